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
	"fmt"

	"github.com/alecthomas/kingpin"
)

// Flags holds the parsed CLI flags for one restore invocation, plus
// which of them the user actually set, so a --config file's values can
// fill in the rest without being clobbered by kingpin's flag defaults.
type Flags struct {
	Torrents          []string
	ScanDirs          []string
	ExportDir         string
	Threads           int
	ResizeExportFiles bool
	Strict            bool
	ConfigFile        string
	Verbose           bool

	torrentsSet, scanDirsSet, exportDirSet, threadsSet, resizeSet bool
}

// ParseFlags parses args into Flags.
func ParseFlags(args []string) (*Flags, error) {
	app := kingpin.New("kraken-restore", "Reconstructs torrent content from scattered local disk bytes")

	var f Flags
	app.Flag("torrents", "Metainfo descriptor file to restore; repeatable").
		IsSetByUser(&f.torrentsSet).StringsVar(&f.Torrents)
	app.Flag("scan", "Directory to search for candidate source bytes; repeatable").
		IsSetByUser(&f.scanDirsSet).StringsVar(&f.ScanDirs)
	app.Flag("export", "Directory restored content is written under").
		IsSetByUser(&f.exportDirSet).StringVar(&f.ExportDir)
	app.Flag("threads", "Number of worker goroutines").Default("1").
		IsSetByUser(&f.threadsSet).IntVar(&f.Threads)
	app.Flag("resize-export-files", "Truncate existing export files up to their declared length before solving").
		IsSetByUser(&f.resizeSet).BoolVar(&f.ResizeExportFiles)
	app.Flag("strict", "Exit nonzero if any piece faulted").BoolVar(&f.Strict)
	app.Flag("config", "Optional YAML file supplying defaults for the flags above; flags set on the command line take precedence").StringVar(&f.ConfigFile)
	app.Flag("verbose", "Enable development-mode (human-readable) logging").Short('v').BoolVar(&f.Verbose)

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}
	if f.ConfigFile == "" && (!f.torrentsSet || !f.scanDirsSet || !f.exportDirSet) {
		return nil, fmt.Errorf("--torrents, --scan, and --export are required unless --config is given")
	}
	return &f, nil
}
