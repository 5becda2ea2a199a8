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

// Package configutil loads YAML configuration files, resolving an
// "extends" chain and validating the result exactly once against the
// fully merged value.
package configutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/imdario/mergo"
	"gopkg.in/validator.v2"
	"gopkg.in/yaml.v2"
)

// ErrCycleRef is returned when a config's extends chain refers back to
// a file already visited.
var ErrCycleRef = errors.New("cyclic reference in configuration extends detected")

// ValidationError wraps the field-level errors produced by validating
// a fully merged config.
type ValidationError struct {
	Errors validator.ErrorMap
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s", e.Errors)
}

// ErrForField returns the validation errors recorded against name, if
// any.
func (e ValidationError) ErrForField(name string) validator.ErrorArray {
	return e.Errors[name]
}

type extendsField struct {
	Extends string `yaml:"extends"`
}

// Load reads filename, follows its extends chain root-first, merges
// every layer into config, and validates the merged result once.
func Load(filename string, config interface{}) error {
	filenames, err := resolveExtends(filename, readExtends)
	if err != nil {
		return err
	}
	return loadFiles(config, filenames)
}

func readExtends(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	var e extendsField
	if err := yaml.Unmarshal(data, &e); err != nil {
		return "", err
	}
	return e.Extends, nil
}

// resolveExtends walks fpath's extends chain, returning the files to
// merge in root-to-leaf order. readExtends returns the raw (possibly
// relative) extends value of a file, or "" if it has none.
func resolveExtends(fpath string, readExtends func(string) (string, error)) ([]string, error) {
	var chain []string
	seen := make(map[string]bool)

	cur := fpath
	for {
		if seen[cur] {
			return nil, ErrCycleRef
		}
		seen[cur] = true
		chain = append([]string{cur}, chain...)

		ext, err := readExtends(cur)
		if err != nil {
			return nil, err
		}
		if ext == "" {
			break
		}
		if !filepath.IsAbs(ext) {
			ext = filepath.Join(filepath.Dir(cur), ext)
		}
		cur = ext
	}
	return chain, nil
}

// loadFiles merges filenames into config in order, so later files
// override earlier ones, then validates the final result.
func loadFiles(config interface{}, filenames []string) error {
	v := reflect.ValueOf(config)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return errors.New("configutil: config must be a non-nil pointer")
	}
	elemType := v.Elem().Type()

	for _, fn := range filenames {
		data, err := os.ReadFile(fn)
		if err != nil {
			return err
		}
		layer := reflect.New(elemType).Interface()
		if err := yaml.Unmarshal(data, layer); err != nil {
			return err
		}
		if err := mergo.Merge(config, layer, mergo.WithOverride); err != nil {
			return err
		}
	}

	if err := validator.Validate(config); err != nil {
		if errs, ok := err.(validator.ErrorMap); ok {
			return ValidationError{Errors: errs}
		}
		return err
	}
	return nil
}
