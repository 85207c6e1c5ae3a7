// Command flowtrackd runs a flow-tracking agent: it ingests flow events
// (a synthetic generator standing in for real packet capture, which is an
// external collaborator out of scope for this module), aggregates them
// into a fixed-capacity flow table, and periodically writes a compressed
// update log and a thresholded-flows report.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	flashflags "github.com/agilira/flash-flags"
	"github.com/agilira/flowtrack"
	"github.com/agilira/flowtrack/internal/auditlog"
	"github.com/agilira/flowtrack/internal/compressedsink"
)

func main() {
	fs := flashflags.New("flowtrackd")
	configPath := fs.String("config", "", "path to a hot-reloadable YAML/JSON config file (optional)")
	capacity := fs.Int("capacity", flowtrack.DefaultCapacity, "fixed number of flow table slots")
	updatePath := fs.String("update-log", "updates.log.gz", "path to the compressed update log")
	thresholdPath := fs.String("threshold-log", "thresholded.log", "path to the thresholded-flows report")
	auditPath := fs.String("audit-db", "audit.db", "path to the SQLite report index")
	reportInterval := fs.Duration("report-interval", 10*time.Second, "how often to emit update and threshold reports")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	cfg := flowtrack.DefaultConfig()
	cfg.Capacity = *capacity

	table := flowtrack.NewTable(cfg)
	writer := flowtrack.NewWriter(table)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	audit, err := auditlog.Open(ctx, *auditPath)
	if err != nil {
		log.Fatalf("open audit log: %v", err)
	}
	defer audit.Close()
	writer.Audit = audit

	sink, err := compressedsink.Open(*updatePath)
	if err != nil {
		log.Fatalf("open update sink: %v", err)
	}
	defer sink.Close()

	var mu sync.Mutex

	if *configPath != "" {
		hc, err := flowtrack.NewHotConfig(cfg, flowtrack.HotConfigOptions{
			ConfigPath:   *configPath,
			PollInterval: time.Second,
		})
		if err != nil {
			log.Fatalf("start hot config: %v", err)
		}
		defer hc.Stop()

		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					mu.Lock()
					table.ApplyHotFields(hc.GetConfig())
					mu.Unlock()
				}
			}
		}()
	}

	var sessionID uint64 = uint64(time.Now().UnixNano())
	var sequenceNumber int64

	go runSyntheticIngest(ctx, table, &mu)

	ticker := time.NewTicker(*reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("shutting down")
			return
		case <-ticker.C:
			mu.Lock()
			sequenceNumber++
			if err := writer.WriteUpdate(sink); err != nil {
				log.Printf("write update: %v", err)
			}
			if err := writer.WriteThresholdedIPs(*thresholdPath, sessionID, sequenceNumber); err != nil {
				log.Printf("write thresholded ips: %v", err)
			}
			if err := sink.Flush(); err != nil {
				log.Printf("flush update sink: %v", err)
			}
			mu.Unlock()
		}
	}
}

// runSyntheticIngest stands in for real packet capture: it feeds
// ProcessFlow a steady stream of synthetic flows so the rest of the
// pipeline (expiration, reporting, hot reload) can be observed end to end
// without a live network interface.
func runSyntheticIngest(ctx context.Context, table *flowtrack.Table, mu *sync.Mutex) {
	rnd := rand.New(rand.NewSource(1))
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			key := flowtrack.FlowKey{
				SrcIP:   rnd.Uint32(),
				DstIP:   rnd.Uint32(),
				Proto:   6,
				SrcPort: uint16(1024 + rnd.Intn(4096)),
				DstPort: uint16(80),
			}
			now := time.Now().Unix()

			mu.Lock()
			if _, err := table.ProcessFlow(key, now); err != nil {
				log.Printf("process flow: %v", err)
			}
			mu.Unlock()
		}
	}
}
