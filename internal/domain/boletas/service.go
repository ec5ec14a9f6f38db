package boletas

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"backoffice/internal/domain/auth"
	cryptoutil "backoffice/internal/platform/crypto"
)

const renderWorkers = 4

type Service struct {
	store  StoreAPI
	crypto *cryptoutil.Service
	dir    string
}

func NewService(store StoreAPI, crypto *cryptoutil.Service, dir string) *Service {
	return &Service{store: store, crypto: crypto, dir: dir}
}

// List returns payslips visible to user. Roles without payslip management
// only see their own.
func (s *Service) List(ctx context.Context, user auth.UserContext, filter ListFilter) ([]Payslip, int, error) {
	if !auth.CanManagePayslips(user.RoleName) {
		employeeID, err := s.store.EmployeeIDForUser(ctx, user.CompanyID, user.UserID)
		if errors.Is(err, ErrNoEmployee) {
			return []Payslip{}, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		filter.EmployeeID = employeeID
	}
	return s.store.List(ctx, user.CompanyID, filter)
}

func (s *Service) Get(ctx context.Context, user auth.UserContext, payslipID string) (Payslip, error) {
	slip, err := s.store.Get(ctx, user.CompanyID, payslipID)
	if err != nil {
		return Payslip{}, err
	}
	if err := s.authorize(ctx, user, slip.EmployeeID); err != nil {
		return Payslip{}, err
	}
	return slip, nil
}

// Open returns the PDF bytes of a payslip, rendering it first when the
// background job has not produced the file yet.
func (s *Service) Open(ctx context.Context, user auth.UserContext, payslipID string) (Payslip, []byte, error) {
	slip, err := s.Get(ctx, user, payslipID)
	if err != nil {
		return Payslip{}, nil, err
	}
	path := slip.FileURL
	if path != "" {
		content, err := s.read(path)
		if err == nil {
			return slip, content, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return Payslip{}, nil, err
		}
		slog.Warn("payslip file missing, rendering again", "payslipId", slip.ID, "path", path)
	}
	path, err = s.render(ctx, user.CompanyID, slip.ID)
	if err != nil {
		return Payslip{}, nil, err
	}
	slip.FileURL = path
	slip.Rendered = true
	content, err := s.read(path)
	if err != nil {
		return Payslip{}, nil, err
	}
	return slip, content, nil
}

// RenderPlanilla writes every payslip of a planilla that has no file yet.
func (s *Service) RenderPlanilla(ctx context.Context, companyID, planillaID string) (int, error) {
	ids, err := s.store.Unrendered(ctx, companyID, planillaID)
	if err != nil {
		return 0, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(renderWorkers)
	for _, id := range ids {
		g.Go(func() error {
			_, err := s.render(gctx, companyID, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	slog.Info("payslips rendered", "planillaId", planillaID, "count", len(ids))
	return len(ids), nil
}

// FileName is the download name of a payslip.
func FileName(slip Payslip) string {
	return fmt.Sprintf("boleta_%s_%s.pdf", slip.PeriodStart.Format("2006-01-02"), slip.ID)
}

func (s *Service) authorize(ctx context.Context, user auth.UserContext, employeeID string) error {
	if auth.CanManagePayslips(user.RoleName) {
		return nil
	}
	own, err := s.store.EmployeeIDForUser(ctx, user.CompanyID, user.UserID)
	if errors.Is(err, ErrNoEmployee) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if own != employeeID {
		return ErrForbidden
	}
	return nil
}

// render writes the payslip under dir/<company>/ and records its path.
// With a data key configured only the sealed .enc file touches disk.
func (s *Service) render(ctx context.Context, companyID, payslipID string) (string, error) {
	data, err := s.store.Data(ctx, companyID, payslipID)
	if err != nil {
		return "", err
	}
	content, err := renderPDF(data)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.dir, companyID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create payslip dir: %w", err)
	}
	path := filepath.Join(dir, payslipID+".pdf")
	if s.crypto.Configured() {
		content, err = s.crypto.Encrypt(content)
		if err != nil {
			return "", fmt.Errorf("encrypt payslip: %w", err)
		}
		path += ".enc"
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", fmt.Errorf("write payslip: %w", err)
	}
	if err := s.store.SetFile(ctx, companyID, payslipID, path); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Service) read(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".enc") {
		return s.crypto.Decrypt(content)
	}
	return content, nil
}
