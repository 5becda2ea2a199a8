// Copyright (c) 2016-2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"fmt"

	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/uber/kraken-restore/lib/orchestrate"
)

// Exit codes, per the CLI surface this tool implements.
const (
	exitSuccess    = 0
	exitSetupError = 1
	exitFaulted    = 2
)

// App wires a parsed Flags into an orchestrate.Config and runs it,
// following the same parse -> validate -> configure -> run staging the
// teacher's agent App uses.
type App struct {
	flags  *Flags
	cfg    orchestrate.Config
	logger *zap.SugaredLogger
	stats  tally.Scope
}

// NewApp builds an App from already-parsed flags.
func NewApp(flags *Flags) (*App, error) {
	a := &App{flags: flags}

	if err := a.buildConfig(); err != nil {
		return nil, fmt.Errorf("build config: %w", err)
	}
	a.setupLogging()
	a.setupMetrics()

	return a, nil
}

func (a *App) buildConfig() error {
	cfg, err := buildOrchestrateConfig(a.flags)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *App) setupLogging() {
	var zlog *zap.Logger
	if a.flags.Verbose {
		zlog, _ = zap.NewDevelopment()
	} else {
		zlog, _ = zap.NewProduction()
	}
	a.logger = zlog.Sugar()
}

func (a *App) setupMetrics() {
	a.stats = tally.NoopScope
}

// Run executes the restore and returns the process exit code to use.
func (a *App) Run(ctx context.Context) (int, error) {
	report, err := orchestrate.Run(ctx, a.cfg, a.logger, a.stats)
	if err != nil {
		a.logger.Errorf("restore completed with errors: %s", err)
	}
	if report != nil {
		a.logger.Infof("solved=%d unfound=%d faulted=%d duration=%s",
			report.Solved, report.Unfound, report.Faulted, report.Duration)
	}

	if err != nil {
		return exitSetupError, err
	}
	if a.flags.Strict && report != nil && report.Faulted > 0 {
		return exitFaulted, nil
	}
	return exitSuccess, nil
}
