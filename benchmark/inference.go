package benchmark

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"go.uber.org/zap"

	"example.com/robotino-nav/core/nav"
)

// RunDecisionBenchmark measures full decision latency, alternating between
// clear-path and obstructed scenarios so both rule bases are exercised.
func RunDecisionBenchmark() {
	const numGoroutine = 1
	const numDecisionPerGoroutine = 100_000
	var mu sync.Mutex
	sg := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(numGoroutine)
	for i := numGoroutine; i > 0; i-- {
		go func() {
			hg := hdrhistogram.New(1, 50000, 5)

			dec, err := nav.NewDecision(zap.NewNop(), nav.DefaultConfig())
			if err != nil {
				log.Printf("Failed to build decision engine: %v", err)
				return
			}

			open := [nav.NumSensors]float64{0.41, 0.41, 0.41, 0.41, 0.41, 0.41, 0.41}
			blocked := open
			blocked[nav.SensorFront] = 0.10
			blocked[nav.SensorLeftFront] = 0.15

			defer wg.Done()
			<-sg
			for j := numDecisionPerGoroutine; j > 0; j-- {
				sensors := open
				if j%2 == 0 {
					sensors = blocked
				}

				t0 := time.Now()
				_, _, err := dec.Decide(1.2, 0.1, sensors)
				d := time.Since(t0)
				if err != nil {
					log.Printf("Failed to run decision: %v", err)
					return
				}

				err = hg.RecordValue(d.Microseconds())
				if err != nil {
					log.Printf("Failed to record histogram value: %v", err)
					return
				}
			}
			mu.Lock()
			defer mu.Unlock()
			hg.PercentilesPrint(os.Stdout, 1, 1.0)
		}()
	}
	t0 := time.Now()
	close(sg)
	wg.Wait()
	log.Print(time.Since(t0))
}
