package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"itad-system/internal/dto"
	"itad-system/internal/entities"
	"itad-system/internal/repositories"
	"itad-system/pkg/types"
	"itad-system/pkg/utils"
)

const recentAssetsLimit = 5

type DashboardServiceInterface interface {
	GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error)
}

type DashboardService struct {
	assetRepo repositories.AssetRepositoryInterface
	woRepo    repositories.WorkOrderRepositoryInterface
	logger    *zap.Logger
}

func NewDashboardService(assetRepo repositories.AssetRepositoryInterface, woRepo repositories.WorkOrderRepositoryInterface, logger *zap.Logger) DashboardServiceInterface {
	return &DashboardService{assetRepo: assetRepo, woRepo: woRepo, logger: logger}
}

func (s *DashboardService) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	inProcess := entities.AssetStatusInProcess
	readyForSale := entities.AssetStatusReadyForSale
	summary := &dto.DashboardSummaryDTO{User: principal}

	var (
		wg   sync.WaitGroup
		errs []error
		mu   sync.Mutex
	)

	addTask := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	addTask(func() (err error) { summary.TotalAssets, err = s.assetRepo.Count(ctx, nil); return })
	addTask(func() (err error) { summary.InProcessAssets, err = s.assetRepo.Count(ctx, &inProcess); return })
	addTask(func() (err error) { summary.ReadyForSale, err = s.assetRepo.Count(ctx, &readyForSale); return })
	addTask(func() (err error) { summary.OpenWorkOrders, err = s.woRepo.CountOpen(ctx); return })
	addTask(func() (err error) {
		summary.RecentAssets, _, err = s.assetRepo.List(ctx, types.Filter{
			Page:           1,
			Limit:          recentAssetsLimit,
			WithPagination: true,
		})
		return
	})

	wg.Wait()

	if len(errs) > 0 {
		s.logger.Error("failed to build dashboard summary", zap.Errors("errors", errs))
		return nil, errors.Join(errs...)
	}
	if summary.RecentAssets == nil {
		summary.RecentAssets = []entities.Asset{}
	}
	return summary, nil
}
