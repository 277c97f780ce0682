// Command mentat serves the thinking-tool engine over MCP stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mentat-ai/mentat/internal/analyzer"
	"github.com/mentat-ai/mentat/internal/config"
	"github.com/mentat-ai/mentat/internal/incorporation"
	"github.com/mentat-ai/mentat/internal/interaction"
	"github.com/mentat-ai/mentat/internal/orchestrator"
	"github.com/mentat-ai/mentat/internal/registry"
	"github.com/mentat-ai/mentat/internal/router"
	"github.com/mentat-ai/mentat/internal/stats"
	"github.com/mentat-ai/mentat/internal/tools"
)

const version = "0.3.0"

func main() {
	var (
		configPath = flag.String("config", "", "path to a TOML config file")
		trace      = flag.Bool("trace", false, "render per-step trace boxes to stderr")
		listTools  = flag.Bool("list-tools", false, "print the registered tools and exit")
		showVer    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Println("mentat " + version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	eng, err := buildEngine(cfg, *trace)
	if err != nil {
		log.Fatalf("setup: %v", err)
	}

	if *listTools {
		printTools(eng.reg)
		return
	}

	srv := newServer(eng)
	if err := srv.Run(context.Background()); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// engine bundles the wired components behind the MCP surface.
type engine struct {
	cfg    *config.Config
	reg    *registry.Registry
	router *router.Router
	client *interaction.Client
	orch   *orchestrator.Orchestrator
	stats  *stats.Collector
}

func buildEngine(cfg *config.Config, trace bool) (*engine, error) {
	reg := registry.New()
	set := tools.DefaultSet()
	if err := set.RegisterAll(reg); err != nil {
		return nil, err
	}

	an := analyzer.New(reg, cfg.Scoring)
	rt := router.New(reg, an, cfg.Routing)
	client := interaction.NewClient(reg, set, cfg.Cache)
	proc := incorporation.New(reg, client)
	collector := stats.NewCollector()

	var hooks []orchestrator.Hook
	if trace {
		hooks = append(hooks, newTraceHook(os.Stderr))
	}

	orch := orchestrator.New(reg, rt, client, proc, collector, cfg.Session, hooks...)
	return &engine{
		cfg:    cfg,
		reg:    reg,
		router: rt,
		client: client,
		orch:   orch,
		stats:  collector,
	}, nil
}

func printTools(reg *registry.Registry) {
	for _, d := range reg.All() {
		fmt.Printf("%-22s %-12s %-14s p%-3d  %s\n", d.Name, d.Level, d.Type, d.Priority, d.Description)
	}
}
