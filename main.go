package main

import (
	"context"
	"database/sql"
	"embed"
	"log"
	"os"
	"os/signal"
	"syscall"

	"MediaGateBot/internal/bot"
	"MediaGateBot/internal/cleanup"
	"MediaGateBot/internal/utils"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[MAIN] Файл .env не найден, используем переменные окружения")
	}

	config := bot.NewConfig()
	if config.Token == "" {
		log.Fatal("[MAIN] BOT_TOKEN не задан")
	}

	if err := utils.EnsureDir(config.DownloadDir); err != nil {
		log.Fatalf("[MAIN] Ошибка создания папки загрузок: %v", err)
	}

	// БД опциональна: без нее бот работает, но без кэша и статистики.
	var db *sql.DB
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		var err error
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			log.Fatalf("[MAIN] Ошибка подключения к БД: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			log.Fatalf("[MAIN] БД недоступна: %v", err)
		}

		goose.SetBaseFS(embedMigrations)
		if err := goose.SetDialect("postgres"); err != nil {
			log.Fatalf("[MAIN] Ошибка настройки миграций: %v", err)
		}
		if err := goose.Up(db, "migrations"); err != nil {
			log.Fatalf("[MAIN] Ошибка применения миграций: %v", err)
		}
		log.Printf("[MAIN] БД подключена, миграции применены")
	} else {
		log.Printf("[MAIN] DATABASE_URL не задан, кэш и статистика выключены")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := cleanup.New(config.DownloadDir, config.RetentionAge(), config.CleanupInterval)
	go sweeper.Run(ctx)

	b, err := bot.NewBot(config, db)
	if err != nil {
		log.Fatalf("[MAIN] Ошибка создания бота: %v", err)
	}

	go func() {
		<-ctx.Done()
		log.Printf("[MAIN] Получен сигнал завершения, останавливаем бота")
		b.Stop()
	}()

	b.Run()
}
