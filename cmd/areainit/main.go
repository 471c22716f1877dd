/*
 *
 * Copyright 2025 gRPC authors.
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

// Command areainit provisions a property directory: it creates the
// backing mapping(s) for a Contexts variant, calls AreaInit, and
// reports whether any security-label xattr step failed.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/DeYouOS/android-bionic/internal/propstore"
)

func main() {
	var (
		path    = pflag.StringP("path", "p", "", "property directory or file to provision")
		verbose = pflag.BoolP("verbose", "v", false, "enable structured logging to stderr")
	)
	pflag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "areainit: --path is required")
		pflag.Usage()
		os.Exit(2)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "areainit: logger setup failed: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		propstore.SetLogger(logger)
	}

	store := propstore.NewStore()
	ok, fsetxattrFailed := store.AreaInit(*path)
	if !ok {
		fmt.Fprintf(os.Stderr, "areainit: failed to provision %s\n", *path)
		os.Exit(1)
	}
	defer store.Close()

	fmt.Printf("provisioned %s\n", *path)
	if fsetxattrFailed {
		fmt.Println("warning: security label could not be applied to one or more areas")
	}
}
