/*
Copyright (c) 2025 Jinja-Go Project

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/work-obs/jinja-go/internal/server"
	"github.com/work-obs/jinja-go/pkg/config"
	"github.com/work-obs/jinja-go/pkg/template"
	"github.com/work-obs/jinja-go/pkg/value"
	"github.com/work-obs/jinja-go/pkg/values"
)

const version = "1.0.0"

var (
	cfgFile      string
	templateRoot string
	valuesFile   string
	setValues    []string
	outputFile   string
	trimBlocks   bool
	lstripBlocks bool

	cfgManager *config.Manager
)

var rootCmd = &cobra.Command{
	Use:   "jinja",
	Short: "Jinja Go - render Jinja2 templates from the command line",
	Long: `Jinja Go is a Jinja2-compatible template engine. This command renders
templates against YAML/JSON value files, or serves the engine as an HTTP API.

Examples:
  # Render a template with values from a YAML file
  jinja render site.conf.j2 --values vars.yaml

  # Render with inline values
  jinja render greeting.j2 --set name=World --set count=3

  # Start the render API server
  jinja server --port 8443`,
	Version: version,
}

var renderCmd = &cobra.Command{
	Use:   "render TEMPLATE",
	Short: "Render a template file against a set of values",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP render API",
	RunE:  runServer,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is jinja.yaml)")
	rootCmd.PersistentFlags().StringVar(&templateRoot, "root", "", "template root directory")
	rootCmd.PersistentFlags().BoolVar(&trimBlocks, "trim-blocks", false, "remove the first newline after a block tag")
	rootCmd.PersistentFlags().BoolVar(&lstripBlocks, "lstrip-blocks", false, "strip whitespace from line start to a block tag")

	renderCmd.Flags().StringVarP(&valuesFile, "values", "f", "", "YAML/JSON file with template values")
	renderCmd.Flags().StringArrayVarP(&setValues, "set", "s", nil, "set a template value as name=value")
	renderCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write output to file instead of stdout")

	serverCmd.Flags().String("host", "", "server bind address")
	serverCmd.Flags().Int("port", 0, "server port")
	serverCmd.Flags().String("cert", "", "TLS certificate file")
	serverCmd.Flags().String("key", "", "TLS private key file")
	serverCmd.Flags().Bool("no-auth", false, "disable JWT authentication")

	viper.BindPFlag("template_root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("trim_blocks", rootCmd.PersistentFlags().Lookup("trim-blocks"))
	viper.BindPFlag("lstrip_blocks", rootCmd.PersistentFlags().Lookup("lstrip-blocks"))

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(serverCmd)
}

func initConfig() {
	cfgManager = config.NewManager(afero.NewOsFs())
	if err := cfgManager.LoadConfig(cfgFile); err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
}

// buildEnvironment wires the configured template root into a fresh engine
// environment.
func buildEnvironment(cfg *config.Config) *template.Environment {
	env := template.NewEnvironment()
	settings := cfg.EngineSettings()
	if trimBlocks {
		settings.TrimBlocks = true
	}
	if lstripBlocks {
		settings.LstripBlocks = true
	}
	env.SetSettings(settings)

	root := cfg.TemplateRoot
	if templateRoot != "" {
		root = templateRoot
	}
	if root == "" {
		root = "."
	}
	env.AddFilesystemHandler(template.NewRealFileSystem(root))
	for _, path := range cfg.TemplatePaths {
		env.AddFilesystemHandler(template.NewRealFileSystem(path))
	}
	return env
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg := cfgManager.GetConfig()
	env := buildEnvironment(cfg)

	templateValues := map[string]value.Value{}
	if valuesFile != "" {
		loaded, err := values.LoadFile(afero.NewOsFs(), valuesFile)
		if err != nil {
			return err
		}
		templateValues = loaded
	}
	if len(setValues) > 0 {
		assigned, err := values.ParseAssignments(setValues)
		if err != nil {
			return err
		}
		for name, v := range assigned {
			templateValues[name] = v
		}
	}

	tmpl, err := env.LoadTemplate(args[0])
	if err != nil {
		return err
	}
	output, err := tmpl.RenderAsString(templateValues)
	if err != nil {
		return err
	}

	if outputFile != "" {
		return afero.WriteFile(afero.NewOsFs(), outputFile, []byte(output), 0o644)
	}
	fmt.Print(output)
	return nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := cfgManager.GetConfig()
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.ServerHost = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.ServerPort = port
	}
	if cert, _ := cmd.Flags().GetString("cert"); cert != "" {
		cfg.TLSCertFile = cert
	}
	if key, _ := cmd.Flags().GetString("key"); key != "" {
		cfg.TLSKeyFile = key
	}
	if noAuth, _ := cmd.Flags().GetBool("no-auth"); noAuth {
		cfg.DisableServerAuth = true
	}

	srv, err := server.New(cfg, buildEnvironment(cfg))
	if err != nil {
		return err
	}

	logger := slog.Default()
	if !cfg.DisableServerAuth {
		token, err := srv.IssueToken("bootstrap", []string{"render"})
		if err != nil {
			return err
		}
		logger.Info("issued bootstrap API token", "token", token)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("render server listening",
			"host", cfg.ServerHost, "port", cfg.ServerPort)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	}
}
