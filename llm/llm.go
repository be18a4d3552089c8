package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fitlayout/flcurl/features"
	"github.com/fitlayout/flcurl/interactor/spinner"
	"github.com/openai/openai-go"
)

var (
	ErrDisabled = errors.New("llm disabled")
)

type LLM struct {
	Client *openai.Client
	Model  string

	ContextManager ChatContextManager
}

// Msg sends a message to the model and streams the answer to out. The
// repository operations are offered to the model as function tools and
// executed against the live session.
func (l *LLM) Msg(ctx context.Context, f features.ServerFeatures, message string, out *os.File) error {
	if l.Client == nil {
		return ErrDisabled
	}

	tools := repositoryTools()
	params := openai.ChatCompletionNewParams{
		Messages: l.ContextManager.addMsg(openai.UserMessage(message)).Messages,
		Model:    l.Model,
	}
	runners := make(map[string]repositoryTool, len(tools))
	for _, tool := range tools {
		params.Tools = append(params.Tools, tool.param())
		runners[tool.name] = tool
	}

	for {
		s := spinner.Spin(ctx, "", out, false)
		stream := l.Client.Chat.Completions.NewStreaming(ctx, params)
		acc := openai.ChatCompletionAccumulator{}
		detector := &LastByteDetector{}
		for stream.Next() {
			if stream.Err() != nil {
				s.Stop()
				return fmt.Errorf("streaming error: %w", stream.Err())
			}
			chunk := stream.Current()
			acc.AddChunk(chunk)
			if chunk.Choices[0].Delta.Content != "" {
				s.Stop()
			}
			fmt.Fprint(io.MultiWriter(out, detector), chunk.Choices[0].Delta.Content)
		}
		s.Stop()

		if detector.TotalBytes() > 0 && detector.LastByte() != '\n' {
			fmt.Fprintln(out)
		}
		if stream.Err() != nil {
			if errors.Is(stream.Err(), context.Canceled) {
				return context.Canceled
			}
			return fmt.Errorf("streaming error: %w", stream.Err())
		}
		if len(acc.Choices) == 0 {
			return errors.New("no choices in response")
		}
		params.Messages = append(params.Messages, acc.Choices[0].Message.ToParam())
		switch acc.Choices[0].FinishReason {
		case "tool_calls":
			if len(acc.Choices[0].Message.ToolCalls) == 0 {
				return errors.New("no tool calls in response, but finish reason is tool_calls")
			}
			for _, toolCall := range acc.Choices[0].Message.ToolCalls {
				s := spinner.Spin(ctx, fmt.Sprintf("\033[90m%s\033[0m\n", toolCall.Function.Name), out, true)
				result, err := l.runTool(ctx, f, runners, toolCall.Function.Name, toolCall.Function.Arguments)
				s.Stop()
				if err != nil {
					return fmt.Errorf("run tool %s: %w", toolCall.Function.Name, err)
				}
				params.Messages = append(params.Messages, openai.ToolMessage(result, toolCall.ID))
			}
		case "stop":
			l.ContextManager.setMsgs(params.Messages)
			return nil
		case "length":
			return errors.New("response too long for model")
		default:
			return fmt.Errorf("unexpected finish reason: %s", acc.Choices[0].FinishReason)
		}
	}
}

func (l *LLM) runTool(ctx context.Context, f features.ServerFeatures, runners map[string]repositoryTool, name, arguments string) (string, error) {
	tool, ok := runners[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	args := map[string]any{}
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("unmarshal tool arguments: %w", err)
		}
	}
	return tool.run(ctx, f, args)
}

type LastByteDetector struct {
	lastByte   byte
	totalBytes int64
}

func (d *LastByteDetector) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return
	}
	n = len(p)
	d.lastByte = p[n-1]
	d.totalBytes += int64(n)
	return
}

func (d *LastByteDetector) LastByte() byte {
	return d.lastByte
}

func (d *LastByteDetector) TotalBytes() int64 {
	return d.totalBytes
}
