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

// Command propbench drives a soak test against a property directory:
// one writer updates a single property's value as fast as it can while N
// reader goroutines spin-read it through the seqlock, reporting any
// torn read they observe. Point it at a scratch path that does not
// exist yet; it provisions a single area file there itself. An existing
// directory is routed like any other Init path (property_info or
// properties.d layout) and is not provisioned from scratch.
package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"

	"github.com/DeYouOS/android-bionic/internal/propstore"
)

func main() {
	var (
		path      = pflag.StringP("path", "p", "", "scratch path (not yet existing) to provision as a single area file and use")
		readers   = pflag.IntP("readers", "r", 8, "number of concurrent reader goroutines")
		duration  = pflag.DurationP("duration", "d", 5*time.Second, "how long to run the soak test")
		propName  = pflag.String("name", "bench.counter", "property name to toggle")
		propWidth = pflag.Int("width", 10, "fixed digit width of the value written each iteration")
	)
	pflag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "propbench: --path is required")
		pflag.Usage()
		os.Exit(2)
	}

	store := propstore.NewStore()
	ok, _ := store.AreaInit(*path)
	if !ok {
		fmt.Fprintf(os.Stderr, "propbench: failed to provision %s\n", *path)
		os.Exit(1)
	}
	defer store.Close()

	if !store.Add(*propName, fmt.Sprintf("%0*d", *propWidth, 0)) {
		fmt.Fprintf(os.Stderr, "propbench: failed to add %s\n", *propName)
		os.Exit(1)
	}
	pi := store.Find(*propName)
	if pi == nil {
		fmt.Fprintln(os.Stderr, "propbench: property vanished immediately after Add")
		os.Exit(1)
	}

	var tornReads int64
	var reads int64
	var writes int64
	var stop int32
	var wg sync.WaitGroup

	for i := 0; i < *readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, propstore.PropValueMax)
			for atomic.LoadInt32(&stop) == 0 {
				n := store.Get(*propName, buf)
				atomic.AddInt64(&reads, 1)
				for _, c := range buf[:n] {
					if c < '0' || c > '9' {
						atomic.AddInt64(&tornReads, 1)
						break
					}
				}
			}
		}()
	}

	deadline := time.Now().Add(*duration)
	counter := 0
	for time.Now().Before(deadline) {
		counter++
		store.Update(pi, fmt.Sprintf("%0*d", *propWidth, counter))
		atomic.AddInt64(&writes, 1)
	}
	atomic.StoreInt32(&stop, 1)
	wg.Wait()

	fmt.Printf("writes=%d reads=%d torn=%d\n",
		atomic.LoadInt64(&writes), atomic.LoadInt64(&reads), atomic.LoadInt64(&tornReads))
	if atomic.LoadInt64(&tornReads) > 0 {
		os.Exit(1)
	}
}
