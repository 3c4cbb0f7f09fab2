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

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "net/http/pprof"

	"github.com/intentwatch/surge-pipeline/pkg/config"
	"github.com/intentwatch/surge-pipeline/pkg/detect"
	"github.com/intentwatch/surge-pipeline/pkg/operational"
	"github.com/intentwatch/surge-pipeline/pkg/operational/health"
	"github.com/intentwatch/surge-pipeline/pkg/server"
	"github.com/intentwatch/surge-pipeline/pkg/utils"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	buildVersion       = "unknown"
	buildDate          = "unknown"
	cfgFile            string
	logLevel           string
	envPrefix          = "SURGE-PIPELINE"
	defaultCfgFileName = ".surge-pipeline"
	opts               config.Options
)

// rootCmd represents the root command
var rootCmd = &cobra.Command{
	Use:   "surge-pipeline",
	Short: "Detect anomalous surges, trends and seasonal patterns in buying-intent signal streams",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

// initConfig use config file and ENV variables if set.
func initConfig() {
	v := viper.New()

	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal(err)
		}
		// Search config in home directory with name ".surge-pipeline" (without extension).
		v.AddConfigPath(home)
		v.SetConfigName(defaultCfgFileName)
	}

	// Read environment variables that match prefix
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	// If a config file is found, read it in.
	cfgErr := v.ReadInConfig()

	bindFlags(rootCmd, v)

	// initialize logger
	initLogger()

	if cfgErr != nil {
		log.Errorf("Read config error: %v", cfgErr)
	}
}

func initLogger() {
	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		ll = log.ErrorLevel
	}
	log.SetLevel(ll)
	log.SetFormatter(&log.TextFormatter{DisableColors: false, FullTimestamp: true, PadLevelText: true, DisableQuote: true})
}

func dumpConfig(opts *config.Options) {
	var json = jsoniter.ConfigCompatibleWithStandardLibrary
	configAsJSON, err := json.MarshalIndent(opts, "", "    ")
	if err != nil {
		panic(fmt.Sprintf("error dumping config: %v", err))
	}
	fmt.Printf("Using configuration:\n%s\n", configAsJSON)
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.Contains(f.Name, ".") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, ".", "_"))
			_ = v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix))
		}

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			switch val.(type) {
			case bool, uint, string, int32, int16, int8, int, uint32, uint64, int64, float64, float32, []string, []int:
				_ = cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val))
			default:
				var jsonNew = jsoniter.ConfigCompatibleWithStandardLibrary
				b, err := jsonNew.Marshal(&val)
				if err != nil {
					log.Fatalf("can't parse flag %s into json with value %v got error %s", f.Name, val, err)
					return
				}
				_ = cmd.Flags().Set(f.Name, string(b))
			}
		}
	})
}

func initFlags() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is $HOME/%s)", defaultCfgFileName))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warning, error")
	rootCmd.PersistentFlags().StringVar(&opts.Health.Address, "health.address", "0.0.0.0", "Health server address")
	rootCmd.PersistentFlags().StringVar(&opts.Health.Port, "health.port", "8080", "Health server port")
	rootCmd.PersistentFlags().IntVar(&opts.Profile.Port, "profile.port", 0, "Go pprof tool port (default: disabled)")
	rootCmd.PersistentFlags().StringVar(&opts.Server.Address, "server.address", "0.0.0.0", "Analysis server address")
	rootCmd.PersistentFlags().IntVar(&opts.Server.Port, "server.port", 8090, "Analysis server port")
	rootCmd.PersistentFlags().StringVar(&opts.Metrics.Address, "metrics.address", "0.0.0.0", "Prometheus server address")
	rootCmd.PersistentFlags().IntVar(&opts.Metrics.Port, "metrics.port", 0, "Prometheus server port (default: disabled)")
	rootCmd.PersistentFlags().StringVar(&opts.Detection, "detection", "", "json of the detection configuration")
	rootCmd.PersistentFlags().StringVar(&opts.SeriesFile, "series", "", "json file holding a time series; when set, analyze it once and print the result")
}

func main() {
	// Initialize flags (command line parameters)
	initFlags()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func analyzeOnce(detector *detect.Detector, seriesFile string) error {
	var json = jsoniter.ConfigCompatibleWithStandardLibrary
	raw, err := os.ReadFile(seriesFile)
	if err != nil {
		return fmt.Errorf("error reading series file %s: %w", seriesFile, err)
	}
	series := detect.TimeSeries{}
	if err := json.Unmarshal(raw, &series); err != nil {
		return fmt.Errorf("error parsing series file %s: %w", seriesFile, err)
	}
	result := detector.Analyze(&series, nil)
	out, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return fmt.Errorf("error encoding analysis result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func run() {
	// Initial log message
	fmt.Printf("Starting %s:\n=====\nBuild version: %s\nBuild date: %s\n\n", filepath.Base(os.Args[0]), buildVersion, buildDate)

	// Dump configuration
	dumpConfig(&opts)

	cfg, err := config.ParseConfig(&opts)
	if err != nil {
		log.Errorf("error in parsing config: %v", err)
		os.Exit(1)
	}

	detector, err := detect.NewDetector(&cfg.Detection, operational.NewMetrics(&cfg.Metrics))
	if err != nil {
		log.Errorf("failed to initialize detector: %s", err)
		os.Exit(1)
	}

	if opts.SeriesFile != "" {
		if err := analyzeOnce(detector, opts.SeriesFile); err != nil {
			log.Errorf("analysis failed: %v", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Setup (threads) exit manager
	utils.SetupElegantExit()
	promServer := server.StartPromServer(&cfg.Metrics)

	if opts.Profile.Port != 0 {
		go func() {
			log.WithField("port", opts.Profile.Port).Info("starting PProf HTTP listener")
			log.WithError(http.ListenAndServe(fmt.Sprintf(":%d", opts.Profile.Port), nil)).
				Error("PProf HTTP listener stopped working")
		}()
	}

	apiServer := server.New(detector, &opts.Server)
	apiServer.Start()

	// Start health report server
	healthServer := health.NewHealthServer(&opts, apiServer.IsAlive, apiServer.IsReady)

	<-utils.ExitChannel()

	if promServer != nil {
		_ = promServer.Shutdown(context.Background())
	}
	_ = apiServer.Shutdown(context.Background())
	_ = healthServer

	// Give all threads a chance to exit and then exit the process
	time.Sleep(time.Second)
	log.Debugf("exiting main run")
	os.Exit(0)
}
