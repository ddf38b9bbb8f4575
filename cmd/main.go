/***************************************************************
 *
 * Copyright (C) 2025, Pelican Project, Morgridge Institute for Research
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you
 * may not use this file except in compliance with the License.  You may
 * obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 ***************************************************************/

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pelicanplatform/histjob/logging"
)

// Set at build time through -ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	logging.SetupLogBuffering()

	err := handleCLI(os.Args, os.Stdout)
	logging.CloseLogger()
	if err != nil {
		os.Exit(1)
	}
}

func handleCLI(args []string, stdout io.Writer) error {
	// The version flag is checked by hand so it works after any subcommand,
	// where cobra would otherwise demand the subcommand's arguments.
	if len(args) > 1 && args[len(args)-1] == "--version" {
		fmt.Fprintln(stdout, "Version:", version)
		fmt.Fprintln(stdout, "Build Date:", date)
		fmt.Fprintln(stdout, "Build Commit:", commit)
		fmt.Fprintln(stdout, "Built By:", builtBy)
		return nil
	}
	return Execute(args[1:])
}
