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

// Package orchestrate wires the path catalog, search discovery, choice
// generator, piece solver, work-stealing executor, and writer together
// into one restore run.
package orchestrate

// Config describes one restore invocation.
type Config struct {
	// Torrents is the set of metainfo descriptor files to restore.
	Torrents []string `yaml:"torrents"`

	// ScanDirs are the filesystem roots searched for candidate source
	// bytes.
	ScanDirs []string `yaml:"scan_dirs"`

	// ExportDir is the root directory restored content is written under.
	ExportDir string `yaml:"export_dir"`

	// Threads is the number of worker goroutines the executor runs, and
	// the target split passed to every piece's choice.Generator.
	Threads int `yaml:"threads"`

	// ResizeExportFiles, if set, truncates existing export files up to
	// their declared length before solving begins. It never shrinks a
	// file that is already too long; that is always fatal.
	ResizeExportFiles bool `yaml:"resize_export_files"`

	// ChannelCapacity bounds the channel the executor feeds the writer
	// through. Zero means the default of 4.
	ChannelCapacity int `yaml:"channel_capacity"`
}

func (c Config) channelCapacity() int {
	if c.ChannelCapacity <= 0 {
		return 4
	}
	return c.ChannelCapacity
}

func (c Config) threads() int {
	if c.Threads <= 0 {
		return 1
	}
	return c.Threads
}
