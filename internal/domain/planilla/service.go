package planilla

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"backoffice/internal/domain/notifications"
	"backoffice/internal/platform/events"
	"backoffice/internal/platform/jobs"
	"backoffice/internal/platform/metrics"
)

type JobQueue interface {
	Enqueue(jobType, companyID string, run jobs.RunFunc) error
}

// PayslipRenderer writes the payslip files of a paid planilla.
type PayslipRenderer interface {
	RenderPlanilla(ctx context.Context, companyID, planillaID string) (int, error)
}

type Notifier interface {
	Create(ctx context.Context, companyID, userID, ntype, title, body string) error
}

// Deps are the optional collaborators of Service. Nil members are skipped.
type Deps struct {
	Metrics  *metrics.Collector
	Events   events.Publisher
	Jobs     JobQueue
	Payslips PayslipRenderer
	Notifier Notifier
}

type Service struct {
	store StoreAPI
	deps  Deps
	now   func() time.Time
}

func NewService(store StoreAPI, deps Deps) *Service {
	if deps.Events == nil {
		deps.Events = events.Noop()
	}
	return &Service{store: store, deps: deps, now: time.Now}
}

func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (Planilla, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := validatePeriod(in.PeriodStart, in.PeriodEnd); err != nil {
		return Planilla{}, err
	}

	var created Planilla
	err := s.store.InTx(ctx, func(tx StoreAPI) error {
		if err := tx.LockCompany(ctx, actor.CompanyID); err != nil {
			return err
		}
		if in.ProjectID != "" {
			exists, err := tx.ProjectExists(ctx, actor.CompanyID, in.ProjectID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrProjectNotFound
			}
		}
		overlap, err := tx.HasOverlap(ctx, actor.CompanyID, in.ProjectID, in.PeriodStart, in.PeriodEnd)
		if err != nil {
			return err
		}
		if overlap {
			return ErrPeriodOverlap
		}
		id, err := tx.Create(ctx, actor.CompanyID, in, actor.UserID)
		if err != nil {
			return err
		}
		created, err = tx.Get(ctx, actor.CompanyID, id)
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, actor, ActionCreate, id, nil, created)
	})
	if err != nil {
		return Planilla{}, err
	}
	s.publish(ctx, created, actor)
	return created, nil
}

func (s *Service) Get(ctx context.Context, companyID, planillaID string) (Planilla, error) {
	return s.store.Get(ctx, companyID, planillaID)
}

func (s *Service) List(ctx context.Context, companyID string, filter ListFilter) ([]Planilla, int, error) {
	if filter.Status != "" && !validStatus(filter.Status) {
		return nil, 0, ErrInvalidStatus
	}
	return s.store.List(ctx, companyID, filter)
}

func (s *Service) Details(ctx context.Context, companyID, planillaID string) ([]Detail, error) {
	if _, err := s.store.Get(ctx, companyID, planillaID); err != nil {
		return nil, err
	}
	return s.store.Details(ctx, companyID, planillaID)
}

// Summary returns the stored totals plus warning counts of a planilla.
func (s *Service) Summary(ctx context.Context, companyID, planillaID string) (Totals, error) {
	details, err := s.Details(ctx, companyID, planillaID)
	if err != nil {
		return Totals{}, err
	}
	return Sum(details), nil
}

// Generate recomputes every detail of a draft planilla in one transaction.
// Any failure leaves the previous details untouched.
func (s *Service) Generate(ctx context.Context, actor Actor, planillaID string) (Planilla, error) {
	started := s.now()
	var generated Planilla
	var count int
	err := s.store.InTx(ctx, func(tx StoreAPI) error {
		// Generations of one company run one at a time so the scope query
		// sees details committed by any overlapping planilla.
		if err := tx.LockCompany(ctx, actor.CompanyID); err != nil {
			return err
		}
		current, err := tx.GetForUpdate(ctx, actor.CompanyID, planillaID)
		if err != nil {
			return err
		}
		if current.Status != StatusBorrador {
			return ErrNotDraft
		}
		if err := tx.DeleteDetails(ctx, planillaID); err != nil {
			return fmt.Errorf("delete previous details: %w", err)
		}

		employees, err := tx.ScopeEmployees(ctx, current)
		if err != nil {
			return fmt.Errorf("select employees: %w", err)
		}
		if len(employees) == 0 {
			return ErrNoEmployees
		}

		details := make([]Detail, 0, len(employees))
		for _, emp := range employees {
			detail, deductionIDs, err := s.generateDetail(ctx, tx, current, emp)
			if err != nil {
				return err
			}
			if err := tx.InsertDetail(ctx, actor.CompanyID, planillaID, detail); err != nil {
				return fmt.Errorf("insert detail for %s: %w", emp.ID, err)
			}
			if err := tx.LinkDeductions(ctx, planillaID, deductionIDs); err != nil {
				return fmt.Errorf("link deductions for %s: %w", emp.ID, err)
			}
			details = append(details, detail)
		}

		totals := Sum(details)
		if err := tx.SaveGeneration(ctx, actor.CompanyID, planillaID, totals, actor.UserID); err != nil {
			return fmt.Errorf("save totals: %w", err)
		}
		generated, err = tx.Get(ctx, actor.CompanyID, planillaID)
		if err != nil {
			return err
		}
		count = len(details)
		return tx.RecordAudit(ctx, actor, ActionGenerate, planillaID, current, totals)
	})
	if err != nil {
		return Planilla{}, err
	}
	s.deps.Metrics.PlanillaGenerated(s.now().Sub(started), count)
	slog.Info("planilla generated", "planillaId", planillaID, "companyId", actor.CompanyID, "employees", count)
	return generated, nil
}

func (s *Service) generateDetail(ctx context.Context, tx StoreAPI, p Planilla, emp ScopedEmployee) (Detail, []string, error) {
	att, err := tx.AttendanceTotals(ctx, p.CompanyID, emp.ID, p.PeriodStart, p.PeriodEnd)
	if err != nil {
		return Detail{}, nil, fmt.Errorf("attendance for %s: %w", emp.ID, err)
	}
	deductions, err := tx.PendingDeductions(ctx, p.CompanyID, emp.ID, p.PeriodStart, p.PeriodEnd)
	if err != nil {
		return Detail{}, nil, fmt.Errorf("deductions for %s: %w", emp.ID, err)
	}
	comp, err := tx.Calculate(ctx, emp.ID, p.PeriodStart, p.PeriodEnd)
	if err != nil {
		return Detail{}, nil, fmt.Errorf("calculate %s: %w", emp.ID, err)
	}
	ids := make([]string, 0, len(deductions))
	for _, d := range deductions {
		ids = append(ids, d.ID)
	}
	return BuildDetail(emp, att, deductions, comp), ids, nil
}

// GenerateAsync queues generation on the background worker.
func (s *Service) GenerateAsync(ctx context.Context, actor Actor, planillaID string) error {
	current, err := s.store.Get(ctx, actor.CompanyID, planillaID)
	if err != nil {
		return err
	}
	if current.Status != StatusBorrador {
		return ErrNotDraft
	}
	if s.deps.Jobs == nil {
		return jobs.ErrQueueFull
	}
	err = s.deps.Jobs.Enqueue(jobs.JobPlanillaGenerate, actor.CompanyID, func(jobCtx context.Context) (any, error) {
		p, err := s.Generate(jobCtx, actor, planillaID)
		if err != nil {
			return map[string]any{"planillaId": planillaID}, err
		}
		return map[string]any{"planillaId": planillaID, "employees": p.EmployeeCount}, nil
	})
	if errors.Is(err, jobs.ErrQueueFull) {
		s.deps.Metrics.JobRejected()
	}
	return err
}

func (s *Service) Approve(ctx context.Context, actor Actor, planillaID string) (Planilla, error) {
	p, err := s.transition(ctx, actor, planillaID, StatusAprobada, "", func(tx StoreAPI, current Planilla) error {
		if current.GeneratedAt == nil || current.EmployeeCount == 0 {
			return ErrNoDetails
		}
		return nil
	})
	if err != nil {
		return Planilla{}, err
	}
	s.notifyCreator(ctx, p, notifications.TypePlanillaAprobada, "Planilla aprobada",
		fmt.Sprintf("La planilla del %s al %s fue aprobada.", p.PeriodStart.Format("2006-01-02"), p.PeriodEnd.Format("2006-01-02")))
	return p, nil
}

// Pay marks an approved planilla as paid. The deductions included at
// generation are applied in the same transaction; if any of them changed
// meanwhile the payment is refused.
func (s *Service) Pay(ctx context.Context, actor Actor, planillaID string) (Planilla, error) {
	var userIDs []string
	p, err := s.transition(ctx, actor, planillaID, StatusPagada, "", func(tx StoreAPI, current Planilla) error {
		linked, applied, err := tx.ApplyDeductions(ctx, actor.CompanyID, planillaID)
		if err != nil {
			return fmt.Errorf("apply deductions: %w", err)
		}
		if linked != applied {
			return ErrStaleDeductions
		}
		if _, err := tx.CreatePayslips(ctx, actor.CompanyID, planillaID); err != nil {
			return fmt.Errorf("create payslips: %w", err)
		}
		userIDs, err = tx.DetailUserIDs(ctx, actor.CompanyID, planillaID)
		return err
	})
	if err != nil {
		return Planilla{}, err
	}

	s.renderPayslips(actor.CompanyID, planillaID)
	if s.deps.Notifier != nil {
		for _, userID := range userIDs {
			if err := s.deps.Notifier.Create(ctx, actor.CompanyID, userID, notifications.TypeBoletaPublicada,
				"Boleta de pago disponible", "Tu boleta de pago ya puede descargarse."); err != nil {
				slog.Warn("payslip notification failed", "userId", userID, "planillaId", planillaID, "err", err)
			}
		}
	}
	return p, nil
}

func (s *Service) Cancel(ctx context.Context, actor Actor, planillaID, reason string) (Planilla, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Planilla{}, ErrReasonRequired
	}
	p, err := s.transition(ctx, actor, planillaID, StatusCancelada, reason, nil)
	if err != nil {
		return Planilla{}, err
	}
	s.notifyCreator(ctx, p, notifications.TypePlanillaCancelada, "Planilla cancelada",
		fmt.Sprintf("La planilla del %s al %s fue cancelada: %s", p.PeriodStart.Format("2006-01-02"), p.PeriodEnd.Format("2006-01-02"), reason))
	return p, nil
}

// transition locks the planilla, checks the state table, runs the optional
// hook and stores the new status, all in one transaction.
func (s *Service) transition(ctx context.Context, actor Actor, planillaID, to, reason string, hook func(tx StoreAPI, current Planilla) error) (Planilla, error) {
	var updated Planilla
	err := s.store.InTx(ctx, func(tx StoreAPI) error {
		current, err := tx.GetForUpdate(ctx, actor.CompanyID, planillaID)
		if err != nil {
			return err
		}
		if !CanTransition(current.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
		}
		if hook != nil {
			if err := hook(tx, current); err != nil {
				return err
			}
		}
		if err := tx.UpdateStatus(ctx, actor.CompanyID, planillaID, to, actor.UserID, reason); err != nil {
			return err
		}
		updated, err = tx.Get(ctx, actor.CompanyID, planillaID)
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, actor, actionFor(to), planillaID,
			map[string]any{"status": current.Status},
			map[string]any{"status": to, "reason": reason})
	})
	if err != nil {
		return Planilla{}, err
	}
	s.deps.Metrics.PlanillaTransition(to)
	s.publish(ctx, updated, actor)
	return updated, nil
}

func (s *Service) renderPayslips(companyID, planillaID string) {
	if s.deps.Payslips == nil {
		return
	}
	if s.deps.Jobs == nil {
		slog.Warn("no job queue, payslips will render on download", "planillaId", planillaID)
		return
	}
	err := s.deps.Jobs.Enqueue(jobs.JobPayslipRender, companyID, func(jobCtx context.Context) (any, error) {
		rendered, err := s.deps.Payslips.RenderPlanilla(jobCtx, companyID, planillaID)
		return map[string]any{"planillaId": planillaID, "rendered": rendered}, err
	})
	if err != nil {
		s.deps.Metrics.JobRejected()
		slog.Warn("payslip render not queued, files will render on download", "planillaId", planillaID, "err", err)
	}
}

func (s *Service) notifyCreator(ctx context.Context, p Planilla, ntype, title, body string) {
	if s.deps.Notifier == nil || p.CreatedBy == "" {
		return
	}
	if err := s.deps.Notifier.Create(ctx, p.CompanyID, p.CreatedBy, ntype, title, body); err != nil {
		slog.Warn("planilla notification failed", "planillaId", p.ID, "type", ntype, "err", err)
	}
}

func (s *Service) publish(ctx context.Context, p Planilla, actor Actor) {
	evt := events.PlanillaEvent{
		PlanillaID: p.ID,
		CompanyID:  p.CompanyID,
		Status:     p.Status,
		ActorID:    actor.UserID,
		At:         s.now().UTC(),
	}
	if err := s.deps.Events.PublishPlanilla(ctx, evt); err != nil {
		slog.Warn("planilla event publish failed", "planillaId", p.ID, "status", p.Status, "err", err)
	}
}

func actionFor(status string) string {
	switch status {
	case StatusAprobada:
		return ActionApprove
	case StatusPagada:
		return ActionPay
	case StatusCancelada:
		return ActionCancel
	}
	return "planilla." + status
}
