package main

import (
	"fmt"

	"finsight/internal/config"
	"finsight/internal/generate"
	"finsight/internal/logging"
	"finsight/internal/research"
	"finsight/internal/workflow"
)

// loadConfig returns the defaults, or the file named by --config over them.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.LoadFromPath(configPath)
}

func setupLogging(cfg config.Config) {
	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
}

// buildCollaborators wires the live search and generation backends. With
// deep set, thin search snippets are expanded via a headless browser.
func buildCollaborators(cfg config.Config, deep bool) (workflow.Researcher, workflow.Generator, error) {
	tavilyKey, err := research.ReadAPIKey(cfg.TavilyKeyFile, "TAVILY_API_KEY")
	if err != nil {
		return nil, nil, fmt.Errorf("tavily API key (%s or $TAVILY_API_KEY): %w", cfg.TavilyKeyFile, err)
	}
	groqKey, err := research.ReadAPIKey(cfg.GroqKeyFile, "GROQ_API_KEY")
	if err != nil {
		return nil, nil, fmt.Errorf("groq API key (%s or $GROQ_API_KEY): %w", cfg.GroqKeyFile, err)
	}

	searcher := research.NewClient(research.Config{
		APIKey:      tavilyKey,
		MaxResults:  cfg.MaxSearchResults,
		SearchDepth: cfg.SearchDepth,
	})
	var researcher workflow.Researcher = searcher
	if deep {
		researcher = &research.DeepResearcher{Base: searcher, Fetcher: &research.PageFetcher{}}
	}

	generator := generate.NewClient(generate.Config{
		APIKey: groqKey,
		Model:  cfg.Model,
	})
	return researcher, generator, nil
}
