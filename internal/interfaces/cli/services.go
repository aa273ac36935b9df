package cli

import (
	"context"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mwinokan/Fragmenstein/internal/application/laboratory"
	"github.com/mwinokan/Fragmenstein/internal/domain/molecule"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/chemio"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/database/redis"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/forcefield"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
	prom "github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/prometheus"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
	ptypes "github.com/mwinokan/Fragmenstein/pkg/types/placement"
)

// PropAttachment is the SD property holding an attachment point "x,y,z".
const PropAttachment = "attachment"

// services is the set of services one command needs.
type services struct {
	lab       *laboratory.Lab
	collector prom.MetricsCollector
	closers   []func() error
}

// newServices wires the laboratory from the CLI context.  The result cache is
// optional: an unreachable server is logged and the run proceeds without it.
// Metrics are collected when enabled in the config or when withMetrics is set.
func newServices(cc *CLIContext, withMetrics bool) (*services, error) {
	cfg := cc.Config
	log := cc.Logger
	rt := &services{}
	opts := []laboratory.Option{laboratory.WithLogger(log)}

	if cfg.Cache.Enabled {
		client, err := redis.NewClient(cfg.Cache, log)
		if err != nil {
			log.Warn("result cache unavailable, continuing without it", logging.Err(err))
		} else {
			rt.closers = append(rt.closers, client.Close)
			opts = append(opts, laboratory.WithCache(redis.NewResultCache(client, log)))
		}
	}

	if cfg.Metrics.Enabled || withMetrics {
		collector, err := prom.NewMetricsCollector(prom.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, log)
		if err != nil {
			rt.close()
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "cannot create metrics collector")
		}
		rt.collector = collector
		opts = append(opts, laboratory.WithMetrics(prom.NewPlacementMetrics(collector)))
	}

	minimizer := forcefield.NewMinimizer(cfg.Minimizer, log)
	rt.lab = laboratory.New(cfg, minimizer, opts...)
	return rt, nil
}

// serveMetrics exposes the collector on addr until ctx is done.
func (rt *services) serveMetrics(ctx context.Context, addr string, log logging.Logger) {
	if rt.collector == nil || addr == "" {
		return
	}
	go func() {
		if err := prom.Serve(ctx, addr, rt.collector, log); err != nil {
			log.Error("metrics endpoint stopped", logging.String("addr", addr), logging.Err(err))
		}
	}()
}

func (rt *services) close() {
	for _, c := range rt.closers {
		_ = c()
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Input and output helpers
// ─────────────────────────────────────────────────────────────────────────────

// readHits loads the hits and names unnamed ones after their position.
func readHits(path string) ([]*molecule.Graph, error) {
	if path == "" {
		return nil, errors.InvalidParam("--hits is required")
	}
	recs, err := chemio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	hits := make([]*molecule.Graph, len(recs))
	for i, r := range recs {
		hits[i] = r.Graph
		if hits[i].Name == "" {
			hits[i].Name = "hit" + strconv.Itoa(i)
		}
	}
	return hits, nil
}

// splitNames splits a hit_names property on spaces and commas.
func splitNames(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// parseVec parses "x,y,z".
func parseVec(s string) (*r3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, errors.InvalidParam("attachment must be x,y,z").WithDetail(s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.InvalidParam("attachment must be x,y,z").WithDetail(s)
		}
		v[i] = f
	}
	return &r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}

// taskFromRecord turns a candidate record into a placement task.  Hits come
// from the hit_names property and the attachment point from attachment.
func taskFromRecord(rec chemio.Record, index int) (laboratory.Task, error) {
	task := laboratory.Task{
		Name:      rec.Graph.Name,
		Candidate: rec.Graph,
		HitNames:  splitNames(rec.Props[chemio.PropHitNames]),
	}
	if task.Name == "" {
		task.Name = "candidate" + strconv.Itoa(index)
	}
	if a := strings.TrimSpace(rec.Props[PropAttachment]); a != "" {
		v, err := parseVec(a)
		if err != nil {
			return task, err
		}
		task.Attachment = v
	}
	return task, nil
}

// outcomeRecords collects the structures of successful outcomes with their
// summary as SD properties.
func outcomeRecords(outcomes []laboratory.Outcome) []chemio.Record {
	var recs []chemio.Record
	for _, o := range outcomes {
		if !o.Status.IsSuccess() || o.Graph == nil {
			continue
		}
		g := o.Graph.Clone()
		g.Name = o.Name
		recs = append(recs, chemio.Record{Graph: g, Props: summaryProps(o.Outcome)})
	}
	return recs
}

func summaryProps(o ptypes.Outcome) map[string]string {
	props := map[string]string{"status": string(o.Status)}
	s := o.Summary
	if s == nil {
		return props
	}
	props[chemio.PropHitNames] = strings.Join(s.Hits, " ")
	props["session_id"] = s.ID
	if len(s.Unmatched) > 0 {
		props["unmatched"] = strings.Join(s.Unmatched, " ")
	}
	if s.Energy != nil {
		props["energy"] = strconv.FormatFloat(*s.Energy, 'f', 4, 64)
	}
	for _, e := range s.Logbook {
		props["logbook_"+string(e.Step)] = e.RungName + " (" + strconv.Itoa(e.MappedAtoms) + " atoms)"
	}
	return props
}

// outcomeError reports the first failed outcome as an error when none
// succeeded.
func outcomeError(outcomes []laboratory.Outcome) error {
	var first *laboratory.Outcome
	for i := range outcomes {
		if outcomes[i].Status.IsSuccess() {
			return nil
		}
		if first == nil {
			first = &outcomes[i]
		}
	}
	if first == nil {
		return nil
	}
	return errors.New(errors.ErrorCode(first.ErrorCode), first.Error).WithDetail(first.Name)
}

//Personal.AI order the ending
