package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/backup"
	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/report"
	"github.com/lodgeworks/hutpipe/modules/lodging/infrastructure/importer"
	"github.com/lodgeworks/hutpipe/pkg/eventbus"
)

// truncated log output kept per step in the report details.
const reportLogLines = 200

// ImportOptions selects the date range and the stages of one import run.
type ImportOptions struct {
	From  time.Time
	To    time.Time
	Kinds []importer.StageKind
}

// ImportService sequences one import run: backup, staged imports, dry-run
// validation, production commit, conditional restore. Runs are strictly
// sequential; concurrent runs on the same reservation table are not
// supported.
type ImportService struct {
	backups   backup.Repository
	runner    importer.Runner
	analyzer  importer.OutputAnalyzer
	publisher eventbus.EventBus
	logger    *logrus.Logger
	now       func() time.Time
}

func NewImportService(
	backups backup.Repository,
	runner importer.Runner,
	analyzer importer.OutputAnalyzer,
	publisher eventbus.EventBus,
	logger *logrus.Logger,
) *ImportService {
	return &ImportService{
		backups:   backups,
		runner:    runner,
		analyzer:  analyzer,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

var stageSteps = map[importer.StageKind]report.StepName{
	importer.KindReservations: report.StepImportReservations,
	importer.KindDaily:        report.StepImportDaily,
	importer.KindQuotas:       report.StepImportQuotas,
}

// Run executes the whole pipeline and always produces a complete report.
// It returns an error only for invalid input, before any step has run.
func (s *ImportService) Run(ctx context.Context, opts ImportOptions) (*report.Run, error) {
	if opts.From.IsZero() || opts.To.IsZero() {
		return nil, fmt.Errorf("import range is required")
	}
	if opts.To.Before(opts.From) {
		return nil, fmt.Errorf("invalid import range: %s is after %s",
			opts.From.Format("2006-01-02"), opts.To.Format("2006-01-02"))
	}
	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = importer.Kinds()
	}
	requested := map[importer.StageKind]bool{}
	kindNames := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		if _, err := importer.ParseKind(string(kind)); err != nil {
			return nil, err
		}
		requested[kind] = true
		kindNames = append(kindNames, string(kind))
	}

	run := report.NewRun(uuid.New(), opts.From, opts.To, kindNames, s.now())
	log := s.logger.WithField("run_id", run.ID)
	log.Infof("starting import run %s..%s kinds=%v",
		opts.From.Format("2006-01-02"), opts.To.Format("2006-01-02"), kindNames)

	failed := false
	handle := s.runBackup(ctx, run, log, &failed)
	s.runStages(ctx, run, log, requested, opts, &failed)
	s.runDryRun(ctx, run, log, opts, &failed)
	s.runProduction(ctx, run, log, requested, opts, &failed)
	s.runRestore(ctx, run, log, handle, failed)

	if handle != nil {
		exists, err := s.backups.Exists(ctx, handle.Name)
		if err != nil {
			log.WithError(err).Warn("could not verify backup table existence")
		} else {
			run.BackupExists = exists
		}
	}

	run.Finish(s.now())
	log.Infof("import run finished success=%v duration=%s", run.Success, run.Duration)
	if s.publisher != nil {
		s.publisher.Publish("import.completed", run)
	}
	return run, nil
}

func (s *ImportService) runBackup(
	ctx context.Context,
	run *report.Run,
	log *logrus.Entry,
	failed *bool,
) *backup.Handle {
	step := run.Step(report.StepBackup)
	step.Start(s.now())

	handle, err := s.backups.Backup(ctx)
	if err != nil {
		*failed = true
		msg := fmt.Sprintf("backup failed: %v", err)
		step.Finish(report.StatusFailed, s.now(), msg)
		run.AddError(msg)
		log.WithError(err).Error("backup failed")
		return nil
	}

	run.BackupTable = handle.Name
	step.Details = map[string]any{"table": handle.Name, "rows": handle.Rows}
	step.Finish(report.StatusSuccess, s.now(), fmt.Sprintf("backed up %d rows to %s", handle.Rows, handle.Name))
	return handle
}

func (s *ImportService) runStages(
	ctx context.Context,
	run *report.Run,
	log *logrus.Entry,
	requested map[importer.StageKind]bool,
	opts ImportOptions,
	failed *bool,
) {
	for _, kind := range importer.Kinds() {
		step := run.Step(stageSteps[kind])
		if !requested[kind] {
			step.Skip("not requested")
			continue
		}
		if *failed {
			step.Skip("previous step failed")
			continue
		}

		step.Start(s.now())
		res, err := s.runner.RunStage(ctx, kind, opts.From, opts.To)
		if err != nil {
			*failed = true
			msg := fmt.Sprintf("%s import failed: %v", kind, err)
			step.Finish(report.StatusFailed, s.now(), msg)
			run.AddError(msg)
			log.WithError(err).Errorf("%s import failed", kind)
			continue
		}

		step.Details = stageDetails(res)
		if res.Failed() {
			*failed = true
			msg := fmt.Sprintf("%s import exited with status %d", kind, res.ExitStatus)
			step.Finish(report.StatusFailed, s.now(), msg)
			run.AddError(msg)
			continue
		}
		step.Finish(report.StatusSuccess, s.now(), "")
	}
}

func (s *ImportService) runDryRun(
	ctx context.Context,
	run *report.Run,
	log *logrus.Entry,
	opts ImportOptions,
	failed *bool,
) {
	step := run.Step(report.StepDryRun)
	if *failed {
		step.Skip("previous step failed")
		return
	}

	step.Start(s.now())
	res, err := s.runner.RunProduction(ctx, opts.From, opts.To, true)
	if err != nil {
		*failed = true
		msg := fmt.Sprintf("dry run failed: %v", err)
		step.Finish(report.StatusFailed, s.now(), msg)
		run.AddError(msg)
		log.WithError(err).Error("dry run failed")
		return
	}

	step.Details = stageDetails(res)
	if ok, reason := s.analyzer.Analyze(res); !ok {
		*failed = true
		msg := fmt.Sprintf("dry run validation failed: %s", reason)
		step.Finish(report.StatusFailed, s.now(), msg)
		run.AddError(msg)
		return
	}
	step.Finish(report.StatusSuccess, s.now(), "")
}

func (s *ImportService) runProduction(
	ctx context.Context,
	run *report.Run,
	log *logrus.Entry,
	requested map[importer.StageKind]bool,
	opts ImportOptions,
	failed *bool,
) {
	step := run.Step(report.StepProduction)
	if !requested[importer.KindReservations] {
		step.Skip("reservations not requested")
		return
	}
	if *failed {
		step.Skip("previous step failed")
		return
	}

	step.Start(s.now())
	// The external task may partially apply changes before failing, so the
	// table counts as modified from the moment the commit is attempted.
	run.TableModified = report.ModificationUnknown
	res, err := s.runner.RunProduction(ctx, opts.From, opts.To, false)
	if err != nil {
		*failed = true
		msg := fmt.Sprintf("production import failed: %v", err)
		step.Finish(report.StatusFailed, s.now(), msg)
		run.AddError(msg)
		log.WithError(err).Error("production import failed")
		return
	}

	step.Details = stageDetails(res)
	if ok, reason := s.analyzer.Analyze(res); !ok {
		*failed = true
		msg := fmt.Sprintf("production import failed: %s", reason)
		step.Finish(report.StatusFailed, s.now(), msg)
		run.AddError(msg)
		return
	}
	run.TableModified = report.ModificationConfirmed
	step.Finish(report.StatusSuccess, s.now(), "")
}

func (s *ImportService) runRestore(
	ctx context.Context,
	run *report.Run,
	log *logrus.Entry,
	handle *backup.Handle,
	failed bool,
) {
	step := run.Step(report.StepRestore)
	if !failed {
		step.Skip("not needed")
		return
	}
	if handle == nil {
		step.Skip("no backup available")
		return
	}

	step.Start(s.now())
	if err := s.backups.Restore(ctx, handle); err != nil {
		// Deliberately no second attempt: a failed restore must not make
		// the partially-modified state worse.
		msg := fmt.Sprintf("restore from %s failed: %v", handle.Name, err)
		step.Finish(report.StatusFailed, s.now(), msg)
		run.AddError(msg)
		log.WithError(err).Error("restore failed")
		return
	}
	step.Finish(report.StatusSuccess, s.now(), fmt.Sprintf("restored %d rows from %s", handle.Rows, handle.Name))
}

func stageDetails(res *importer.StageResult) map[string]any {
	details := map[string]any{"exit_status": res.ExitStatus}
	if res.Stdout != "" {
		details["stdout"] = importer.Truncate(res.Stdout, reportLogLines)
	}
	if res.Stderr != "" {
		details["stderr"] = importer.Truncate(res.Stderr, reportLogLines)
	}
	return details
}
