package provider

import (
	"context"
	"errors"
	"strings"
)

type Completer interface {
	Complete(ctx context.Context, messages []Message, options *CompleteOptions) (*Completion, error)
}

var (
	ErrEmptyCompletion = errors.New("empty completion")
)

type Message struct {
	Role MessageRole

	Content MessageContent
}

func SystemMessage(text string) Message {
	return Message{
		Role: MessageRoleSystem,

		Content: MessageContent{
			TextContent(text),
		},
	}
}

func UserMessage(text string, files ...*File) Message {
	content := MessageContent{
		TextContent(text),
	}

	for _, f := range files {
		if f == nil {
			continue
		}

		content = append(content, FileContent(f))
	}

	return Message{
		Role: MessageRoleUser,

		Content: content,
	}
}

func AssistantMessage(text string) Message {
	return Message{
		Role: MessageRoleAssistant,

		Content: MessageContent{
			TextContent(text),
		},
	}
}

type MessageContent []Content

func (c MessageContent) String() string {
	var parts []string

	for _, content := range c {
		if content.Text != "" {
			parts = append(parts, content.Text)
		}
	}

	return strings.Join(parts, "\n\n")
}

func (c MessageContent) Files() []*File {
	var files []*File

	for _, content := range c {
		if content.File != nil {
			files = append(files, content.File)
		}
	}

	return files
}

type Content struct {
	Text    string
	Refusal string

	File *File
}

func TextContent(val string) Content {
	return Content{
		Text: val,
	}
}

func RefusalContent(val string) Content {
	return Content{
		Refusal: val,
	}
}

func FileContent(f *File) Content {
	return Content{
		File: f,
	}
}

type File struct {
	Name string

	Content     []byte
	ContentType string
}

type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

type CompleteOptions struct {
	Stop []string

	MaxTokens   *int
	Temperature *float32

	Format CompletionFormat
	Schema *Schema
}

type Completion struct {
	ID    string
	Model string

	Reason CompletionReason

	Message *Message

	Usage *Usage
}

// Text returns the concatenated text parts of the completion message.
func (c *Completion) Text() string {
	if c == nil || c.Message == nil {
		return ""
	}

	return c.Message.Content.String()
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

type CompletionFormat string

const (
	CompletionFormatJSON CompletionFormat = "json"
)

type CompletionReason string

const (
	CompletionReasonStop   CompletionReason = "stop"
	CompletionReasonLength CompletionReason = "length"
	CompletionReasonFilter CompletionReason = "filter"
)

func Ptr[T any](v T) *T {
	return &v
}
