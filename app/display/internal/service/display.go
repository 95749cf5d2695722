package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/stock_radar/app/display/internal/usecase"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/engine"
	"github.com/iWorld-y/stock_radar/app/stock_radar/pkg/market"
)

// DisplayService 对外 HTTP 服务
type DisplayService struct {
	ucUser   *usecase.UserUseCase
	ucReport *usecase.ReportUseCase
	provider market.Provider
	eng      *engine.Engine
	log      *log.Helper
}

func NewDisplayService(ucUser *usecase.UserUseCase, ucReport *usecase.ReportUseCase, provider market.Provider, eng *engine.Engine, logger log.Logger) *DisplayService {
	return &DisplayService{
		ucUser:   ucUser,
		ucReport: ucReport,
		provider: provider,
		eng:      eng,
		log:      log.NewHelper(logger),
	}
}

// RegisterRoutes 注册全部路由
func (s *DisplayService) RegisterRoutes(srv *khttp.Server) {
	root := srv.Route("/")
	root.GET("/health", s.Health)

	api := srv.Route("/api")
	api.GET("/stocks/{code}", s.GetStock)
	api.POST("/stocks", s.PostStock)
	api.POST("/register", s.Register)
	api.POST("/login", s.Login)
	api.GET("/profile", s.GetProfile)
	api.PUT("/profile", s.UpdateProfile)
	api.GET("/reports", s.ListReports)
	api.GET("/reports/{id}", s.GetReport)
	api.POST("/radar/run", s.RunRadar)
}

// Health 健康检查
func (s *DisplayService) Health(ctx khttp.Context) error {
	return ctx.Result(200, map[string]string{"status": "ok"})
}

// GetStock 查询单只股票的日线与指标
func (s *DisplayService) GetStock(ctx khttp.Context) error {
	code := ctx.Vars().Get("code")
	interval := ctx.Query().Get("interval")
	if interval == "" {
		interval = "365d"
	}

	resp := engine.FetchFeatures(ctx, s.provider, code, interval)
	return ctx.Result(200, resp)
}

type stockRequest struct {
	StockCode string `json:"stock_code"`
	Interval  string `json:"interval"`
}

// PostStock 查询单只股票的日线与指标（POST 形式）
func (s *DisplayService) PostStock(ctx khttp.Context) error {
	var req stockRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if req.Interval == "" {
		req.Interval = "365d"
	}

	resp := engine.FetchFeatures(ctx, s.provider, req.StockCode, req.Interval)
	return ctx.Result(200, resp)
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register 用户注册
func (s *DisplayService) Register(ctx khttp.Context) error {
	var req authRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := s.ucUser.Register(ctx, req.Username, req.Password); err != nil {
		return ctx.Result(200, map[string]any{"success": false, "message": err.Error()})
	}
	return ctx.Result(200, map[string]any{"success": true, "message": "success"})
}

// Login 用户登录
func (s *DisplayService) Login(ctx khttp.Context) error {
	var req authRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	token, err := s.ucUser.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}
	return ctx.Result(200, map[string]string{"token": token, "username": req.Username})
}

// GetProfile 获取当前用户信息
func (s *DisplayService) GetProfile(ctx khttp.Context) error {
	username, err := s.authUser(ctx)
	if err != nil {
		return err
	}
	u, err := s.ucUser.GetProfile(ctx, username)
	if err != nil {
		return err
	}
	return ctx.Result(200, map[string]any{
		"username":  u.Username,
		"persona":   u.Persona,
		"watchlist": u.Watchlist,
	})
}

type profileRequest struct {
	Persona   string   `json:"persona"`
	Watchlist []string `json:"watchlist"`
}

// UpdateProfile 更新当前用户画像与自选股
func (s *DisplayService) UpdateProfile(ctx khttp.Context) error {
	username, err := s.authUser(ctx)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := s.ucUser.UpdateProfile(ctx, username, req.Persona, req.Watchlist); err != nil {
		return err
	}
	return ctx.Result(200, map[string]any{"success": true})
}

// ListReports 分页列出历史报告
func (s *DisplayService) ListReports(ctx khttp.Context) error {
	page, _ := strconv.Atoi(ctx.Query().Get("page"))
	pageSize, _ := strconv.Atoi(ctx.Query().Get("page_size"))

	reports, total, err := s.ucReport.List(ctx, page, pageSize)
	if err != nil {
		return err
	}
	return ctx.Result(200, map[string]any{
		"reports": reports,
		"total":   total,
	})
}

// GetReport 获取单次运行的完整报告
func (s *DisplayService) GetReport(ctx khttp.Context) error {
	id, err := strconv.Atoi(ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest("INVALID_ID", "report id must be an integer")
	}
	r, err := s.ucReport.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return ctx.Result(200, r)
}

// RunRadar 为当前用户触发一次雷达分析（异步）
func (s *DisplayService) RunRadar(ctx khttp.Context) error {
	username, err := s.authUser(ctx)
	if err != nil {
		return err
	}
	if s.eng == nil {
		return errors.InternalServer("RADAR_DISABLED", "radar engine is not configured")
	}

	u, err := s.ucUser.GetProfile(ctx, username)
	if err != nil {
		return err
	}
	if len(u.Watchlist) == 0 {
		return errors.BadRequest("EMPTY_WATCHLIST", "user watchlist is empty")
	}

	// 后台执行，不阻塞请求
	go func() {
		_, err := s.eng.Run(context.Background(), engine.RunOptions{
			UserID:  u.ID,
			Codes:   u.Watchlist,
			Persona: u.Persona,
		})
		if err != nil {
			s.log.Errorf("radar run failed for user %s: %v", username, err)
		}
	}()

	return ctx.Result(200, map[string]any{"started": true})
}

// authUser 从 Authorization 头解析 JWT 并返回用户名
func (s *DisplayService) authUser(ctx khttp.Context) (string, error) {
	auth := ctx.Header().Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", errors.Unauthorized("AUTH_REQUIRED", "missing bearer token")
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if token == "" {
		return "", errors.Unauthorized("AUTH_REQUIRED", "missing bearer token")
	}
	return s.ucUser.VerifyToken(token)
}
