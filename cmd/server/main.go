// @title           User Management API
// @version         1.0
// @description     Accounts, employees, departments, workflows and employee requests

// @contact.name   API Support
// @contact.email  support@user-management.local

// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer ` prefix
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/axxaxinx/user-management-final-123/internal/app/routes"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services/container"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/config"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/database"
	Logger "github.com/axxaxinx/user-management-final-123/pkg/logger"
)

func main() {
	root := &cli.Command{
		Name:  "server",
		Usage: "User management HTTP service",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			checkDBCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx)
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		Logger.Error("%v", err)
		_ = Logger.Close()
		os.Exit(1)
	}
	_ = Logger.Close()
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Connect, migrate and start the HTTP server",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations and exit",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Usage: "auto or versioned, defaults to DB_MIGRATION_MODE"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			mode := cfg.DBMigrationMode
			if m := cmd.String("mode"); m != "" {
				mode = m
			}

			pool, err := database.NewConnectionPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			return database.Migrate(ctx, pool.GetDB(), cfg.DBDriver, mode)
		},
	}
}

func checkDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-db",
		Usage: "Verify the database is reachable and print pool statistics",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			pool, err := database.NewConnectionPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pool.HealthCheck(ctx); err != nil {
				return err
			}
			printSystemInfo(pool)
			return nil
		},
	}
}

// bootstrap 加载.env文件和配置, 并初始化日志
func bootstrap() (*config.Config, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := Logger.SetupLogger(Logger.Config{Env: cfg.AppEnv, Level: cfg.LogLevel, Dir: cfg.LogDir}); err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	if envErr != nil {
		// 环境变量可能已经通过其他方式设置
		Logger.Warning("无法加载.env文件: %v", envErr)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return cfg, nil
}

func runServer(ctx context.Context) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewConnectionPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool.GetDB(), cfg.DBDriver, cfg.DBMigrationMode); err != nil {
		return err
	}

	deps := container.Dependencies{}
	if cfg.RedisEnabled {
		redis := services.NewRedisService(cfg)
		if err := redis.Ping(ctx); err != nil {
			Logger.Warning("Redis不可用, 使用内存缓存: %v", err)
			_ = redis.Close()
		} else {
			deps.Redis = redis
		}
	}

	sc := container.NewServiceContainer(pool, cfg, deps)
	defer sc.Close()

	ensureAdminExists(ctx, sc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           routes.SetupRouter(sc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	printSystemInfo(pool)

	errCh := make(chan error, 1)
	go func() {
		Logger.Info("服务器启动在: http://0.0.0.0:%s", cfg.ServerPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		Logger.Info("收到退出信号, 正在关闭服务器")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// ensureAdminExists 配置了默认管理员时, 确保系统中有管理员账户
func ensureAdminExists(ctx context.Context, sc *container.ServiceContainer, cfg *config.Config) {
	if cfg.DefaultAdminEmail == "" || cfg.DefaultAdminPassword == "" {
		return
	}
	accounts := sc.GetService("account").(services.InterfaceAccountService)
	created, err := accounts.EnsureAdmin(ctx, cfg.DefaultAdminEmail, cfg.DefaultAdminPassword)
	if err != nil {
		Logger.Error("创建默认管理员失败: %v", err)
		return
	}
	if created {
		Logger.Info("已创建默认管理员账户 %s", cfg.DefaultAdminEmail)
	}
}

// printSystemInfo 打印系统信息
func printSystemInfo(pool *database.ConnectionPool) {
	if stats, err := pool.Stats(); err == nil {
		Logger.Info("数据库连接池状态: %+v", stats)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	Logger.Info("CPU核心数: %d, 协程数: %d, 内存: Alloc=%v MiB, Sys=%v MiB",
		runtime.NumCPU(), runtime.NumGoroutine(), m.Alloc/1024/1024, m.Sys/1024/1024)
}
