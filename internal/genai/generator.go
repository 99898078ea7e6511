// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

// Package genai wraps the LLM calls: assignment draft generation and the
// detox-plan chat.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/classgo/classgo/internal/config"
	"github.com/classgo/classgo/internal/models"
)

// detoxSystemPrompt is the system instruction for the detox-plan chat.
const detoxSystemPrompt = "You are a doctor who helps patients detox from addictions. Return a detailed 7-day detox plan in bullet point format."

// ErrEmptyCompletion is returned when the model replies with no choices.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// chatClient is the slice of the OpenAI client the generator needs.
// Narrowed to an interface so tests can stub completions.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator produces assignment drafts and detox plans.
type Generator struct {
	client     chatClient
	draftModel string
	chatModel  string
}

// NewGenerator builds a generator from the LLM configuration.
func NewGenerator(cfg config.LLMConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Generator{
		client:     openai.NewClientWithConfig(clientCfg),
		draftModel: cfg.DraftModel,
		chatModel:  cfg.ChatModel,
	}
}

// GenerateAssignmentDraft produces a draft response for one coursework item.
func (g *Generator) GenerateAssignmentDraft(ctx context.Context, work *models.CourseWork) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.draftModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a diligent student completing a class assignment. Write a complete, well-structured response that fully addresses the assignment below.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildAssignmentPrompt(work),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("draft generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// DetoxPlan answers one detox-chat message with the doctor system
// instruction.
func (g *Generator) DetoxPlan(ctx context.Context, input string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: detoxSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	})
	if err != nil {
		return "", fmt.Errorf("detox chat failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// BuildAssignmentPrompt renders one coursework item into the user prompt.
// The materials block lists each attachment by kind and title so the model
// can reference provided sources.
func BuildAssignmentPrompt(work *models.CourseWork) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Assignment: %s\n", work.Title)
	if work.Description != "" {
		fmt.Fprintf(&b, "\nDescription:\n%s\n", work.Description)
	}
	if work.MaxPoints > 0 {
		fmt.Fprintf(&b, "\nMax points: %g\n", work.MaxPoints)
	}
	if work.DueDate != nil {
		fmt.Fprintf(&b, "Due date: %04d-%02d-%02d\n", work.DueDate.Year, work.DueDate.Month, work.DueDate.Day)
	}

	if len(work.Materials) > 0 {
		b.WriteString("\nAttached materials:\n")
		for _, m := range work.Materials {
			switch {
			case m.DriveFile != nil:
				fmt.Fprintf(&b, "- Document: %s\n", m.DriveFile.DriveFile.Title)
			case m.YouTubeVideo != nil:
				fmt.Fprintf(&b, "- Video: %s\n", m.YouTubeVideo.Title)
			case m.Link != nil:
				title := m.Link.Title
				if title == "" {
					title = m.Link.URL
				}
				fmt.Fprintf(&b, "- Link: %s\n", title)
			case m.Form != nil:
				fmt.Fprintf(&b, "- Form: %s\n", m.Form.Title)
			}
		}
	}

	return b.String()
}
