package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openclinic-tools/dhisync/internal/config"
	"github.com/openclinic-tools/dhisync/internal/db"
	"github.com/openclinic-tools/dhisync/internal/dhis2"
	"github.com/openclinic-tools/dhisync/internal/dispatch"
	"github.com/openclinic-tools/dhisync/internal/export"
	"github.com/openclinic-tools/dhisync/internal/llm"
	"github.com/openclinic-tools/dhisync/internal/model"
	"github.com/openclinic-tools/dhisync/internal/openmrs"
	"github.com/openclinic-tools/dhisync/internal/output"
	"github.com/openclinic-tools/dhisync/internal/pipeline"
	"github.com/openclinic-tools/dhisync/internal/resolve"
)

// buildPipeline assembles the question-to-export pipeline from the
// resolved config, the environment credentials, and the open store.
// With withExecutor set it also connects to the clinical database; the
// returned cleanup closes that connection and is safe to call always.
func buildPipeline(cmd *cobra.Command, withExecutor bool) (*pipeline.Pipeline, func(), error) {
	w := getWriter(cmd)
	cfg := getCfg(cmd)
	conn := getDB(cmd)
	creds := config.LoadCredentials()

	names, err := cfg.LoadReportNames()
	if err != nil {
		return nil, nil, cmdErr(err, output.ErrGeneral)
	}
	catalog, err := cfg.LoadMapping()
	if err != nil {
		return nil, nil, cmdErr(err, output.ErrValidation)
	}

	builder := llm.NewBuilder(cfg.LoadSchema(), llm.ExampleFunc(func(limit int) ([]model.FeedbackExample, error) {
		return db.ListApprovedExamples(conn, limit)
	}))

	var gen dispatch.Generator
	if creds.GeminiAPIKey != "" {
		g, err := llm.NewGemini(cmd.Context(), creds.GeminiAPIKey, builder)
		if err != nil {
			// Generative-path setup failures degrade to offline routing.
			w.Warn("generative backend unavailable: %v", err)
		} else {
			gen = g
		}
	}

	mapper := export.New(catalog)
	mapper.Diag = w.Warn

	p := &pipeline.Pipeline{
		Dispatcher: dispatch.New(cfg.QueriesDir(), gen),
		Resolver:   resolve.New(names),
		Mapper:     mapper,
		Pusher:     dhis2.New(creds.DHIS2BaseURL, creds.DHIS2User, creds.DHIS2Pass),
		Store:      conn,
		Diag:       w.Warn,
	}

	cleanup := func() {}
	if withExecutor {
		exec, err := openmrs.Open(cmd.Context(), creds)
		if err != nil {
			return nil, nil, cmdErr(fmt.Errorf("connecting to OpenMRS: %w", err), output.ErrExecution)
		}
		p.Executor = exec
		cleanup = func() { exec.Close() }
	}

	return p, cleanup, nil
}

// pipelineErr maps the typed error taxonomy to output error codes.
func pipelineErr(err error) *CmdError {
	var (
		rej  *model.SecurityRejection
		verr *model.ValidationError
		xerr *model.ExecutionError
		merr *model.MappingError
		serr *model.SyncError
	)
	switch {
	case errors.As(err, &rej):
		return cmdErr(err, output.ErrSecurity)
	case errors.As(err, &verr):
		return cmdErr(err, output.ErrValidation)
	case errors.As(err, &xerr):
		return cmdErr(err, output.ErrExecution)
	case errors.As(err, &merr):
		return cmdErr(err, output.ErrMapping)
	case errors.As(err, &serr):
		return cmdErr(err, output.ErrSync)
	default:
		return cmdErr(err, output.ErrGeneral)
	}
}
