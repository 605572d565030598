package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

var (
	ErrProviderFailure    = errors.New("model provider failure")
	ErrEmptyModelResponse = errors.New("empty model response")
)

type OptimizeInput struct {
	UserID         string
	ResumeText     string
	JobTitle       string
	JobDescription string
	Mode           OptimizationMode
}

type OptimizeResult struct {
	Text     string
	Model    string
	Keywords []string
}

type Optimizer interface {
	Optimize(ctx context.Context, input OptimizeInput) (*OptimizeResult, error)
}

func GetAgent(ctx context.Context, apiKey, agentName, modelName string) (agent.Agent, error) {
	model, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %v", err)
	}

	customAgent, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       model,
		Description: "Rewrite resumes against a target job description",
		Instruction: prompt(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %v", err)
	}

	return customAgent, nil
}

// AgentOptimizer runs every rewrite in its own short-lived agent session so
// no conversation state leaks between users.
type AgentOptimizer struct {
	runner    *runner.Runner
	sessions  session.Service
	appName   string
	modelName string
}

func NewAgentOptimizer(ctx context.Context, apiKey, modelName string) (*AgentOptimizer, error) {
	agentName := "resume_optimizer"
	optimizer, err := GetAgent(ctx, apiKey, agentName, modelName)
	if err != nil {
		return nil, err
	}

	inMemoryService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        optimizer.Name(),
		Agent:          optimizer,
		SessionService: inMemoryService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	return &AgentOptimizer{
		runner:    r,
		sessions:  inMemoryService,
		appName:   optimizer.Name(),
		modelName: modelName,
	}, nil
}

func (o *AgentOptimizer) Optimize(ctx context.Context, input OptimizeInput) (*OptimizeResult, error) {
	agentSession, err := o.sessions.Create(ctx, &session.CreateRequest{
		AppName:   o.appName,
		UserID:    input.UserID,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent session: %w", err)
	}
	defer func() {
		_ = o.sessions.Delete(context.Background(), &session.DeleteRequest{
			AppName:   agentSession.Session.AppName(),
			UserID:    agentSession.Session.UserID(),
			SessionID: agentSession.Session.ID(),
		})
	}()

	stream := o.runner.Run(ctx, agentSession.Session.UserID(), agentSession.Session.ID(), &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: optimizePrompt(input)},
		},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
		}
		if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}

	text := cleanModelOutput(output)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyModelResponse
	}

	text, keywords := PostProcess(text, input)
	return &OptimizeResult{Text: text, Model: o.modelName, Keywords: keywords}, nil
}
