/*
 * Copyright (C) 2021 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package config

import (
	"fmt"
	"os"

	"github.com/intentwatch/surge-pipeline/pkg/api"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
)

type Options struct {
	Detection  string
	SeriesFile string
	Health     Health
	Server     Server
	Profile    Profile
	Metrics    MetricsSettings
}

type Health struct {
	Address string
	Port    string
}

type Server struct {
	Address string
	Port    int
}

type Profile struct {
	Port int
}

// MetricsSettings drives the prometheus endpoint exposed by the analyzer itself.
type MetricsSettings struct {
	Address string `yaml:"address,omitempty" json:"address,omitempty" doc:"address of the prometheus server"`
	Port    int    `yaml:"port,omitempty" json:"port,omitempty" doc:"port of the prometheus server (disabled when 0)"`
	Prefix  string `yaml:"prefix,omitempty" json:"prefix,omitempty" doc:"prefix for the metrics names"`
	NoPanic bool   `yaml:"noPanic,omitempty" json:"noPanic,omitempty"`
}

// ConfigFileStruct is the yaml/json representation of the analyzer configuration file.
type ConfigFileStruct struct {
	LogLevel  string             `yaml:"log-level,omitempty" json:"log-level,omitempty"`
	Detection api.SurgeDetection `yaml:"detection,omitempty" json:"detection,omitempty"`
	Metrics   MetricsSettings    `yaml:"metricsSettings,omitempty" json:"metricsSettings,omitempty"`
}

// ParseConfig creates the internal representation of the detection configuration
// from the options; the inline json takes precedence over the file content.
func ParseConfig(opts *Options) (ConfigFileStruct, error) {
	out := ConfigFileStruct{Metrics: opts.Metrics}
	if opts.Detection != "" {
		logrus.Debugf("opts.Detection = %v ", opts.Detection)
		var json = jsoniter.ConfigCompatibleWithStandardLibrary
		err := json.Unmarshal([]byte(opts.Detection), &out.Detection)
		if err != nil {
			return out, fmt.Errorf("error when reading detection config: %w", err)
		}
	}
	logrus.Debugf("detection = %v ", out.Detection)
	return out, nil
}

// ParseConfigFile reads a yaml configuration file into a ConfigFileStruct.
func ParseConfigFile(fileName string) (ConfigFileStruct, error) {
	out := ConfigFileStruct{}
	raw, err := os.ReadFile(fileName)
	if err != nil {
		return out, fmt.Errorf("error reading config file %s: %w", fileName, err)
	}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("error parsing config file %s: %w", fileName, err)
	}
	return out, nil
}

// UnmarshalYaml is used by tests to build configurations from yaml literals.
func UnmarshalYaml(raw string) (ConfigFileStruct, error) {
	out := ConfigFileStruct{}
	if err := yaml.Unmarshal([]byte(raw), &out); err != nil {
		return out, err
	}
	return out, nil
}
