package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stocksim/api/docs"
	v1 "github.com/stocksim/api/internal/api/handler/v1"
	"github.com/stocksim/api/internal/api/middleware"
	"github.com/stocksim/api/internal/config"
	"github.com/stocksim/api/internal/quote"
	"github.com/stocksim/api/internal/repository"
	"github.com/stocksim/api/internal/repository/dao"
	"github.com/stocksim/api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	quotes := quote.NewClient(conf.Quote.BaseURL, conf.Quote.Timeout, conf.Quote.RetryMaxElapsed)

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	tradeHandler := s.initTradeHandler(db, quotes)
	portfolioHandler := s.initPortfolioHandler(db, quotes)
	quoteHandler := v1.NewQuoteHandler(quotes)
	streamHandler := v1.NewStreamHandler(quotes, conf.Stream.Interval)
	go streamHandler.Run()

	s.MountHandlers(authHandler, userHandler, tradeHandler, portfolioHandler, quoteHandler, streamHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)

	startingCash, err := decimal.NewFromString(s.Config.API.StartingCash)
	if err != nil {
		zap.L().Warn("invalid starting_cash, defaulting to 10000.00",
			zap.String("starting_cash", s.Config.API.StartingCash),
		)
		startingCash = decimal.NewFromInt(10000)
	}

	svc := service.NewAuthService(repo, startingCash)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initTradeHandler(db *gorm.DB, quotes *quote.Client) *v1.TradeHandler {
	ledgerRepo := repository.NewLedgerRepository(dao.NewLedgerDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewTradeService(ledgerRepo, userRepo, quotes)
	handler := v1.NewTradeHandler(svc)

	return handler
}

func (s *Server) initPortfolioHandler(db *gorm.DB, quotes *quote.Client) *v1.PortfolioHandler {
	ledgerRepo := repository.NewLedgerRepository(dao.NewLedgerDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewPortfolioService(ledgerRepo, userRepo, quotes)
	handler := v1.NewPortfolioHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	tradeHandler *v1.TradeHandler,
	portfolioHandler *v1.PortfolioHandler,
	quoteHandler *v1.QuoteHandler,
	streamHandler *v1.StreamHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	protected := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		protected.GET("/users/me", userHandler.HandleGetMe)
		protected.GET("/quotes/:symbol", quoteHandler.HandleGetQuote)
		protected.GET("/portfolio", portfolioHandler.HandleGetPortfolio)
		protected.GET("/transactions", tradeHandler.HandleGetTransactions)
		protected.POST("/trades/buy", tradeHandler.HandleBuy)
		protected.POST("/trades/sell", tradeHandler.HandleSell)
		protected.GET("/stream/quotes", streamHandler.HandleStream)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Stock trading simulator API"
	docs.SwaggerInfo.Description = "Simulated stock trading: quotes, buys, sells, portfolio and history."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
