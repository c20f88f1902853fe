package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/finreport/internal/convert"
	"github.com/dgallion1/finreport/internal/master"
	"github.com/dgallion1/finreport/internal/report"
	"github.com/dgallion1/finreport/internal/template"
)

// Worker processes a single report generation job.
type Worker struct {
	gen    *report.Generator
	tmpl   template.Template
	phases []report.PhaseSpec
	log    *slog.Logger
}

func NewWorker(gen *report.Generator, tmpl template.Template, phases []report.PhaseSpec, log *slog.Logger) *Worker {
	return &Worker{
		gen:    gen,
		tmpl:   tmpl,
		phases: phases,
		log:    log,
	}
}

// Process runs the full convert-merge-generate pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "company", job.Company)

	// Phase 1: Convert each uploaded file to markdown.
	job.SetStatus(StatusConverting, "converting")
	files := job.Files()
	job.SetTotalFiles(len(files))

	now := time.Now()
	docs := make([]master.Document, 0, len(files))
	sources := make([]string, 0, len(files))
	convertErrors := false
	for _, f := range files {
		conv, err := convert.ForFile(f.Name)
		if err != nil {
			log.Error("unsupported format", "file", f.Name, "error", err)
			job.AddError(fmt.Sprintf("%s: %s", f.Name, err))
			convertErrors = true
			continue
		}
		res, err := conv.Convert(bytes.NewReader(f.Data), f.Name)
		if err != nil {
			log.Error("conversion failed", "file", f.Name, "error", err)
			job.AddError(fmt.Sprintf("convert %s: %s", f.Name, err))
			convertErrors = true
			continue
		}
		docs = append(docs, master.Document{
			Name:     res.Title,
			Source:   f.Name,
			Content:  res.Markdown,
			Modified: now,
		})
		sources = append(sources, f.Name)
		job.IncrFilesConverted()
	}
	log.Info("conversion complete", "converted", len(docs), "total", len(files))

	if len(docs) == 0 {
		job.AddError("no convertible documents")
		job.SetStatus(StatusFailed, "converting")
		return
	}

	// Phase 2: Merge converted documents into the master corpus.
	job.SetStatus(StatusMerging, "merging")
	corpus := master.Build(job.Company, docs, now)

	// Phase 3: Generate the report.
	job.SetStatus(StatusGenerating, "generating")
	job.SetPhaseProgress(0, len(w.phases))
	rep := w.gen.Generate(ctx, job.Company, corpus, w.tmpl, w.phases, sources)
	job.SetPhaseProgress(len(rep.Results)-rep.Failed(), len(rep.Results))

	for _, r := range rep.Results {
		if r.Err != nil {
			job.AddError(fmt.Sprintf("phase %s: %s", r.Spec.Name, r.Err))
		}
	}
	log.Info("generation complete", "phases", len(rep.Results), "failed", rep.Failed())

	job.SetReport(report.Assemble(rep))

	if convertErrors || rep.Failed() > 0 {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}
