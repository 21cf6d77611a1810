/*
 * Copyright 2025 Carver Automation Corporation.
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
 */

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/carverauto/otel-demo/pkg/stack"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stackcheck",
		Short:         "Checks the declarative observability stack under deploy/",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newValidateCmd())

	return root
}

func newValidateCmd() *cobra.Command {
	var deployDir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the collector pipeline and Grafana datasource provisioning",
		Long: `Loads the OpenTelemetry Collector config, the Grafana datasource provisioning
and the compose file, and checks that logs reach Loki with their label hints,
traces reach Tempo, and the Loki derived field extracts trace ids in the exact
form the API writes them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.OutOrStdout(), deployDir)
		},
	}

	cmd.Flags().StringVar(&deployDir, "deploy-dir", "deploy", "Directory holding the deployment configs")

	return cmd
}

func runValidate(out io.Writer, deployDir string) error {
	if err := stack.ValidateDir(deployDir); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "%s: collector, datasources and compose file are consistent\n", deployDir)

	return err
}
