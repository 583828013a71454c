package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	filters "github.com/nlstn/go-filters"
	"github.com/nlstn/go-filters/internal/sampledata"
)

type server struct {
	db        *gorm.DB
	options   *filters.Options
	parser    *filters.Parser
	predicate *filters.PredicateEvaluator
	gorm      *filters.GormEvaluator
	obs       *filters.Observability
	logger    *slog.Logger
}

// productOptions declares the filterable product fields. City matches any of
// the product's delivery addresses.
func productOptions() (*filters.Options, error) {
	return filters.NewOptions(
		filters.NewField[int]("Id"),
		filters.NewField[string]("Name"),
		filters.NewField[decimal.Decimal]("Price"),
		filters.NewField[bool]("IsOutOfStock", "OutOfStock"),
		filters.NewField[time.Time]("CreationDate", "Created"),
		filters.NewField[string]("City"),
	)
}

func newServer(db *gorm.DB, cfg filters.Config, obs *filters.Observability, logger *slog.Logger) (*server, error) {
	options, err := productOptions()
	if err != nil {
		return nil, err
	}
	parser, err := filters.NewConfiguredParser(cfg, options,
		filters.WithLogger(logger),
		filters.WithObservability(obs),
	)
	if err != nil {
		return nil, err
	}

	s := &server{
		db:      db,
		options: options,
		parser:  parser,
		predicate: filters.NewPredicateEvaluator(
			filters.WithEvaluatorLogger(logger),
			filters.WithEvaluatorObservability(obs),
		),
		gorm: filters.NewGormEvaluator(filters.NewGormTarget(filters.WithTable("products")),
			filters.WithEvaluatorLogger(logger),
			filters.WithEvaluatorObservability(obs),
		),
		obs:    obs,
		logger: logger,
	}
	s.predicate.RegisterFieldOverride("City", cityInMemory)
	s.gorm.RegisterFieldOverride("City", cityInDatabase)
	return s, nil
}

func (s *server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", s.handleProducts)
	mux.HandleFunc("GET /products/memory", s.handleProductsInMemory)
	mux.HandleFunc("GET /keywords", s.handleKeywords)
	mux.HandleFunc("POST /reseed", s.handleReseed)
	return requestLogger(s.logger, filters.HTTPMiddleware(s.obs)(mux))
}

func (s *server) handleProducts(w http.ResponseWriter, r *http.Request) {
	f, err := filters.ParseRequest(r, s.parser, "")
	if err != nil {
		s.writeError(w, err)
		return
	}

	q, err := filters.ApplyToDB(s.gorm, s.db.WithContext(r.Context()).Model(&sampledata.Product{}), f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var products []sampledata.Product
	if err := q.Order("id").Find(&products).Error; err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"count": len(products), "value": products})
}

func (s *server) handleProductsInMemory(w http.ResponseWriter, r *http.Request) {
	f, err := filters.ParseRequest(r, s.parser, "")
	if err != nil {
		s.writeError(w, err)
		return
	}

	products, err := filters.ApplyToSliceContext(r.Context(), s.predicate, f, sampledata.Products())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"count": len(products), "value": products})
}

type fieldInfo struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Aliases []string `json:"aliases,omitempty"`
}

func (s *server) handleKeywords(w http.ResponseWriter, _ *http.Request) {
	fields := make([]fieldInfo, 0, len(s.options.Fields()))
	for _, f := range s.options.Fields() {
		fields = append(fields, fieldInfo{Name: f.Name, Type: f.Type.String(), Aliases: f.Aliases})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"binary":     s.options.BinaryKeywords(),
		"unary":      s.options.UnaryKeywords(),
		"comparison": s.options.ComparisonKeywords(),
		"fields":     fields,
	})
}

func (s *server) handleReseed(w http.ResponseWriter, _ *http.Request) {
	if err := seedDatabase(s.db); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Database reseeded with default data",
	})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

// writeError maps malformed filters to 400 and filters the target cannot
// evaluate to 422.
func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case filters.IsFormatError(err):
		status = http.StatusBadRequest
	case filters.IsEvaluationError(err):
		status = http.StatusUnprocessableEntity
	default:
		s.logger.Error("Request failed", "error", err)
	}

	var formatErr *filters.FormatError
	body := map[string]any{"error": err.Error()}
	if errors.As(err, &formatErr) && formatErr.Detail != "" {
		body["detail"] = formatErr.Detail
	}
	s.writeJSON(w, status, body)
}

// cityInMemory matches products with at least one address whose city
// satisfies the comparison.
func cityInMemory(e *filters.PredicateEvaluator, c *filters.FieldComparison) (filters.PredicateExpr, error) {
	city, err := e.Target().Field("City")
	if err != nil {
		return nil, err
	}
	value, err := e.Target().Constant(c.Value)
	if err != nil {
		return nil, err
	}
	test, err := e.Binary(c.Kind, city, value)
	if err != nil {
		return nil, err
	}

	return func(record any) (any, error) {
		var addresses []sampledata.Address
		switch p := record.(type) {
		case sampledata.Product:
			addresses = p.Addresses
		case *sampledata.Product:
			addresses = p.Addresses
		}
		for _, a := range addresses {
			v, err := test(a)
			if err != nil {
				return nil, err
			}
			if ok, _ := v.(bool); ok {
				return true, nil
			}
		}
		return false, nil
	}, nil
}

// cityInDatabase is cityInMemory as a subquery on the addresses table.
func cityInDatabase(e *filters.GormEvaluator, c *filters.FieldComparison) (clause.Expression, error) {
	id, err := e.Target().Field("Id")
	if err != nil {
		return nil, err
	}
	addresses := filters.NewGormTarget(filters.WithTable("addresses"))
	city, err := addresses.Field("City")
	if err != nil {
		return nil, err
	}
	value, err := addresses.Constant(c.Value)
	if err != nil {
		return nil, err
	}
	test, err := e.Binary(c.Kind, city, value)
	if err != nil {
		return nil, err
	}
	return clause.Expr{
		SQL:  "? IN (SELECT addresses.product_id FROM addresses WHERE ?)",
		Vars: []any{id, test},
	}, nil
}
