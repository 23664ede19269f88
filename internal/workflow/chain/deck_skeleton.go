package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	wfmodel "prompt-deck-api/internal/workflow/model"
	wfnode "prompt-deck-api/internal/workflow/node"
	workflowport "prompt-deck-api/internal/workflow/port"
	workflowprompt "prompt-deck-api/internal/workflow/prompt"
	"prompt-deck-api/pkg/logger"
)

const deckSkeletonWorkflow = "deck_skeleton"

// DeckSkeletonChain 单次调用 LLM 生成幻灯片骨架
// 不做重试，失败直接返回给调用方
type DeckSkeletonChain struct {
	factory  workflowport.ChatModelFactory
	registry *workflowprompt.Registry

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.DeckSkeletonInput, *schema.Message]
	chainErr  error
}

func NewDeckSkeletonChain(factory workflowport.ChatModelFactory, registry *workflowprompt.Registry) *DeckSkeletonChain {
	if registry == nil {
		registry = workflowprompt.NewRegistry()
	}
	return &DeckSkeletonChain{factory: factory, registry: registry}
}

func (c *DeckSkeletonChain) Invoke(ctx context.Context, in *wfmodel.DeckSkeletonInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type deckSkeletonChainState struct {
	In       *wfmodel.DeckSkeletonInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *DeckSkeletonChain) getChain() (compose.Runnable[*wfmodel.DeckSkeletonInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *DeckSkeletonChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.DeckSkeletonInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.DeckSkeletonInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.DeckSkeletonInput) (*deckSkeletonChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			if strings.TrimSpace(in.Topic) == "" {
				return nil, fmt.Errorf("topic is empty")
			}
			if in.SlideCount <= 0 {
				return nil, fmt.Errorf("slide count must be positive")
			}
			return &deckSkeletonChainState{In: in}, nil
		}),
		compose.WithNodeName("deck_skeleton.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *deckSkeletonChainState) (*deckSkeletonChainState, error) {
			msgs, err := c.formatMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("deck_skeleton.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *deckSkeletonChainState) (*deckSkeletonChainState, error) {
			provider := strings.TrimSpace(st.In.Provider)
			ctx = workflowport.WithLLMCall(ctx, deckSkeletonWorkflow, provider)
			chatModel, err := c.factory.Get(ctx, provider)
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildDeckSkeletonModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", provider,
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildDeckSkeletonModelOptions(st.In, false)...)
			}
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("deck_skeleton.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *deckSkeletonChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("deck_skeleton.finalize"),
	)

	return chain.Compile(ctx)
}

func (c *DeckSkeletonChain) formatMessages(ctx context.Context, in *wfmodel.DeckSkeletonInput) ([]*schema.Message, error) {
	tpl, err := c.registry.ChatTemplate(workflowprompt.PromptDeckSkeletonV1)
	if err != nil {
		return nil, err
	}
	return tpl.Format(ctx, map[string]any{
		"topic":       strings.TrimSpace(in.Topic),
		"slide_count": in.SlideCount,
	})
}

func buildDeckSkeletonModelOptions(in *wfmodel.DeckSkeletonInput, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 4)

	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if m := strings.TrimSpace(in.Model); m != "" {
		opts = append(opts, model.WithModel(m))
	}

	if enableSchema {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   "deck_skeleton",
					"strict": false,
					"schema": deckSkeletonJSONSchema(in.SlideCount),
				},
			},
		}))
	}

	return opts
}

func deckSkeletonJSONSchema(slideCount int) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"title", "slides"},
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"slides": map[string]any{
				"type":     "array",
				"minItems": slideCount,
				"maxItems": slideCount,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"title", "content", "visualPrompt"},
					"properties": map[string]any{
						"title": map[string]any{"type": "string"},
						"content": map[string]any{
							"type":     "array",
							"minItems": 1,
							"items":    map[string]any{"type": "string"},
						},
						"visualPrompt": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}
