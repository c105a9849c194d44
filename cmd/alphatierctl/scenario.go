package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarnowski/alphatier-go/pool"
)

// scenario is the YAML shape alphatierctl loads: a set of executors to
// register followed by one commit to submit against them. It exists
// purely to exercise the core interactively — Alphatier itself has no
// file format or persistence, so this shape lives entirely in the CLI.
type scenario struct {
	Executors []scenarioExecutor `yaml:"executors"`
	Commit    scenarioCommit     `yaml:"commit"`
}

type scenarioExecutor struct {
	ID        string             `yaml:"id"`
	Resources map[string]float64 `yaml:"resources"`
	Metadata  map[string]any     `yaml:"metadata"`
}

type scenarioCommit struct {
	SchedulerID        string           `yaml:"scheduler_id"`
	AllowPartialCommit bool             `yaml:"allow_partial_commit"`
	Force              bool             `yaml:"force"`
	Actions            []scenarioAction `yaml:"actions"`
}

type scenarioAction struct {
	ID         string             `yaml:"id"`
	Type       string             `yaml:"type"`
	ExecutorID string             `yaml:"executor_id"`
	Resources  map[string]float64 `yaml:"resources"`
	Metadata   map[string]any     `yaml:"metadata"`

	ExecutorMetadataVersion *int `yaml:"executor_metadata_version"`
	ExecutorTaskIDsVersion  *int `yaml:"executor_task_ids_version"`
	MetadataVersion         *int `yaml:"metadata_version"`
}

func loadScenario(path string) (scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return scenario{}, fmt.Errorf("read scenario: %w", err)
	}

	var s scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	return s, nil
}

func (s scenarioCommit) toPool() pool.Commit {
	actions := make([]pool.Action, 0, len(s.Actions))
	for _, a := range s.Actions {
		actions = append(actions, pool.Action{
			ID:                      a.ID,
			Type:                    pool.ActionType(a.Type),
			ExecutorID:              a.ExecutorID,
			Resources:               pool.Resources(a.Resources),
			Metadata:                a.Metadata,
			ExecutorMetadataVersion: a.ExecutorMetadataVersion,
			ExecutorTaskIDsVersion:  a.ExecutorTaskIDsVersion,
			MetadataVersion:         a.MetadataVersion,
		})
	}
	return pool.Commit{
		SchedulerID:        s.SchedulerID,
		AllowPartialCommit: s.AllowPartialCommit,
		Actions:            actions,
	}
}
