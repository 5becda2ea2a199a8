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
	"github.com/uber/kraken-restore/lib/orchestrate"
	"github.com/uber/kraken-restore/utils/configutil"
)

// Config is the --config file shape, overridden field-by-field by any
// flag the user explicitly set.
type Config struct {
	Torrents          []string `yaml:"torrents"`
	ScanDirs          []string `yaml:"scan_dirs"`
	ExportDir         string   `yaml:"export_dir"`
	Threads           int      `yaml:"threads"`
	ResizeExportFiles bool     `yaml:"resize_export_files"`
}

// buildOrchestrateConfig merges an optional --config file with the
// flags the user set on the command line. Flags win: a config file
// supplies defaults, and only the flags actually passed override them.
func buildOrchestrateConfig(f *Flags) (orchestrate.Config, error) {
	var cfg Config
	if f.ConfigFile != "" {
		if err := configutil.Load(f.ConfigFile, &cfg); err != nil {
			return orchestrate.Config{}, err
		}
	}

	if f.torrentsSet {
		cfg.Torrents = f.Torrents
	}
	if f.scanDirsSet {
		cfg.ScanDirs = f.ScanDirs
	}
	if f.exportDirSet {
		cfg.ExportDir = f.ExportDir
	}
	if f.threadsSet {
		cfg.Threads = f.Threads
	}
	if f.resizeSet {
		cfg.ResizeExportFiles = f.ResizeExportFiles
	}

	return orchestrate.Config{
		Torrents:          cfg.Torrents,
		ScanDirs:          cfg.ScanDirs,
		ExportDir:         cfg.ExportDir,
		Threads:           cfg.Threads,
		ResizeExportFiles: cfg.ResizeExportFiles,
	}, nil
}
