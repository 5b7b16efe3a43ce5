package main

import (
	"context"
	"flag"
	"path/filepath"
	"strings"
	"time"

	"gatecraft.ai/internal/persistence/indexdb"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	tick := fs.Uint64("tick", 0, "tick (digest)")
	pos := fs.String("pos", "", "cell x,y,z (events)")
	limit := fs.Int("limit", 100, "result limit")
	_ = fs.Parse(args)

	q := "counts"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fail(2, "missing -world or -db")
		}
		path = filepath.Join(*dataDir, "worlds", *worldID, "index", "world.sqlite")
	}

	r, err := indexdb.OpenReader(path)
	if err != nil {
		fail(1, "open:", err)
	}
	defer r.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch q {
	case "counts":
		counts, err := r.Counts(ctx)
		if err != nil {
			fail(1, "query:", err)
		}
		printJSON(counts)

	case "events":
		p, err := parseVec3(*pos)
		if err != nil {
			fail(2, "bad -pos:", err)
		}
		rows, err := r.EventsAt(ctx, p, *limit)
		if err != nil {
			fail(1, "query:", err)
		}
		for _, e := range rows {
			printJSON(e)
		}

	case "latest":
		s, ok, err := r.LatestSnapshot(ctx)
		if err != nil {
			fail(1, "query:", err)
		}
		if !ok {
			fail(2, "no snapshots found")
		}
		printJSON(s)

	case "digest":
		d, ok, err := r.TickDigest(ctx, *tick)
		if err != nil {
			fail(1, "query:", err)
		}
		if !ok {
			fail(2, "tick not indexed:", *tick)
		}
		printJSON(map[string]any{"tick": *tick, "digest": d})

	default:
		fail(2, "unknown query:", q, "\nusage: admin db [-data ./data] [-world WORLD|-db PATH] counts|events -pos x,y,z|latest|digest -tick T")
	}
}
