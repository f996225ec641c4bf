package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
	"github.com/rl1809/cocktail-pantry/internal/core/service"
)

type GRPCHandler struct {
	stock             StockUseCase
	shopping          ShoppingUseCase
	feasibility       FeasibilityUseCase
	defaultMaxMissing int
	logger            *zap.Logger
}

func NewGRPCHandler(stock StockUseCase, shopping ShoppingUseCase, feasibility FeasibilityUseCase, defaultMaxMissing int, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandler{
		stock:             stock,
		shopping:          shopping,
		feasibility:       feasibility,
		defaultMaxMissing: defaultMaxMissing,
		logger:            logger,
	}
}

func (h *GRPCHandler) AddToStock(ctx context.Context, req *AddItemRequest) (*ItemReply, error) {
	entry, err := h.stock.AddToStock(ctx, req.input())
	if err != nil {
		return nil, h.fail("AddToStock", err)
	}
	return &ItemReply{
		UserID:       entry.UserID,
		IngredientID: entry.IngredientID,
		Amount:       entry.Quantity.Amount,
		Unit:         entry.Quantity.Unit,
		Version:      entry.Version,
	}, nil
}

func (h *GRPCHandler) AddToShoppingList(ctx context.Context, req *AddItemRequest) (*ItemReply, error) {
	entry, err := h.shopping.AddToShoppingList(ctx, req.input())
	if err != nil {
		return nil, h.fail("AddToShoppingList", err)
	}
	return &ItemReply{
		UserID:       entry.UserID,
		IngredientID: entry.IngredientID,
		Amount:       entry.Quantity.Amount,
		Unit:         entry.Quantity.Unit,
		Done:         entry.Done,
		Version:      entry.Version,
	}, nil
}

func (h *GRPCHandler) ListMakeable(ctx context.Context, req *ListMakeableRequest) (*CocktailListReply, error) {
	results, err := h.feasibility.ListMakeable(ctx, req.UserID)
	if err != nil {
		return nil, h.fail("ListMakeable", err)
	}
	return toCocktailList(results), nil
}

func (h *GRPCHandler) ListQuasiRealizable(ctx context.Context, req *ListQuasiRequest) (*CocktailListReply, error) {
	maxMissing := h.defaultMaxMissing
	if req.MaxMissing != nil {
		maxMissing = *req.MaxMissing
	}

	results, err := h.feasibility.ListQuasiRealizable(ctx, req.UserID, maxMissing)
	if err != nil {
		return nil, h.fail("ListQuasiRealizable", err)
	}
	return toCocktailList(results), nil
}

func (h *GRPCHandler) fail(method string, err error) error {
	if classify(err) == kindInternal {
		h.logger.Error("rpc failed", zap.String("method", method), zap.Error(err))
	}
	return grpcError(err)
}

func (r *AddItemRequest) input() service.AddItemInput {
	return service.AddItemInput{
		UserID:       r.UserID,
		IngredientID: r.IngredientID,
		Amount:       r.Amount,
		Unit:         r.Unit,
	}
}

func toCocktailList(results []domain.FeasibilityResult) *CocktailListReply {
	out := &CocktailListReply{Cocktails: make([]CocktailReply, 0, len(results))}
	for _, r := range results {
		missing := r.MissingIngredients
		if missing == nil {
			missing = []string{}
		}
		out.Cocktails = append(out.Cocktails, CocktailReply{
			CocktailID:         r.CocktailID,
			Name:               r.CocktailName,
			MissingIngredients: missing,
			MissingCount:       r.MissingCount,
			TotalCount:         r.TotalCount,
			PossessionRatio:    r.PossessionRatio,
		})
	}
	return out
}
