package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"prompt-deck-api/internal/domain/entity"
	"prompt-deck-api/internal/domain/repository"
	"prompt-deck-api/internal/infrastructure/persistence/memory"
	infraredis "prompt-deck-api/internal/infrastructure/persistence/redis"
)

func backends(t *testing.T) map[string]repository.IdentityRepository {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return map[string]repository.IdentityRepository{
		"memory": memory.NewIdentityRepository(),
		"redis":  infraredis.NewIdentityRepository(infraredis.NewClientFromRedis(rdb), "deck:identity:"),
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewService(repo, "", bcrypt.MinCost)

			id, err := svc.Register(ctx, "  Ada Lovelace ", "pw", "1815-12-10")
			if err != nil {
				t.Fatalf("Register: %v", err)
			}
			if id.Username != "adalovelace" || id.Address != "adalovelace.pragyanai.com" {
				t.Fatalf("identity = %+v", id)
			}

			if _, err := svc.Register(ctx, "ADA LOVELACE", "other", "2000-01-01"); !errors.Is(err, entity.ErrDuplicateUsername) {
				t.Fatalf("duplicate: %v", err)
			}

			got, err := svc.Authenticate(ctx, "AdaLovelace", "pw")
			if err != nil {
				t.Fatalf("Authenticate: %v", err)
			}
			if got.Address != id.Address || got.DOB != "1815-12-10" {
				t.Fatalf("authenticated = %+v", got)
			}

			if _, err := svc.Authenticate(ctx, "adalovelace", "wrong"); !errors.Is(err, entity.ErrInvalidCredentials) {
				t.Fatalf("wrong password: %v", err)
			}
			if _, err := svc.Authenticate(ctx, "nobody", "pw"); !errors.Is(err, entity.ErrInvalidCredentials) {
				t.Fatalf("unknown user: %v", err)
			}
			if err := svc.Ping(ctx); err != nil {
				t.Fatalf("Ping: %v", err)
			}
		})
	}
}

func TestRegisterRequiresAllFields(t *testing.T) {
	svc := NewService(memory.NewIdentityRepository(), "example.test", bcrypt.MinCost)
	cases := [][3]string{
		{"", "pw", "2000-01-01"},
		{"   ", "pw", "2000-01-01"},
		{"ada", "", "2000-01-01"},
		{"ada", "pw", " "},
	}
	for _, c := range cases {
		if _, err := svc.Register(context.Background(), c[0], c[1], c[2]); !errors.Is(err, entity.ErrInvalidRequest) {
			t.Errorf("Register(%q, %q, %q) = %v", c[0], c[1], c[2], err)
		}
	}
}

func TestCustomSuffix(t *testing.T) {
	svc := NewService(memory.NewIdentityRepository(), ".example.test", bcrypt.MinCost)
	id, err := svc.Register(context.Background(), "Bob", "pw", "1990-01-01")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id.Address != "bob.example.test" {
		t.Fatalf("address = %q", id.Address)
	}
}

func TestSession(t *testing.T) {
	s := NewSession()
	if s.Current() != nil {
		t.Fatal("new session should be empty")
	}
	if s.Terminate() {
		t.Fatal("terminating empty session reported an identity")
	}

	id := &entity.Identity{Username: "ada", Address: "ada.pragyanai.com"}
	s.Establish(id)
	cur := s.Current()
	if cur == nil || cur.Address != id.Address {
		t.Fatalf("current = %+v", cur)
	}
	cur.Address = "mutated"
	if s.Current().Address != "ada.pragyanai.com" {
		t.Fatal("Current must return a copy")
	}

	if !s.Terminate() || s.Current() != nil {
		t.Fatal("terminate did not clear identity")
	}
}
