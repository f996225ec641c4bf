package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/cocktail-pantry/internal/adapter/storage"
	"github.com/rl1809/cocktail-pantry/internal/core/engine"
	"github.com/rl1809/cocktail-pantry/internal/core/service"
)

const (
	userID        = int64(990900)
	ingredientID  = int64(990900)
	totalRequests = 50
)

func main() {
	ctx := context.Background()

	redisAddr := getenv("REDIS_ADDR", "localhost:6379")
	mysqlDSN := getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/pantry?parseTime=true")

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()

	store := storage.NewMySQLAdapter(db)
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// Clear previous run
	db.ExecContext(ctx, `DELETE FROM stock WHERE user_id = ?`, userID)
	db.ExecContext(ctx, `INSERT IGNORE INTO ingredients (id, name) VALUES (?, 'stress-gin')`, ingredientID)

	stockService := service.NewStockService(store, store, storage.NewRedisAdapter(rdb), engine.New(nil, engine.Config{}),
		service.Options{LockWait: 30 * time.Second}, nil)

	var successCount atomic.Int32
	var failCount atomic.Int32

	// Alternate units so half the adds take the conversion branch
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			in := service.AddItemInput{UserID: userID, IngredientID: ingredientID, Amount: 10, Unit: "ml"}
			if n%2 == 1 {
				in.Amount, in.Unit = 1, "cl"
			}
			if _, err := stockService.AddToStock(ctx, in); err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if fail == 0 {
		fmt.Println("PASS: every add was applied")
	} else {
		fmt.Printf("FAIL: %d adds failed\n", fail)
	}

	entry, err := store.GetStockEntry(ctx, userID, ingredientID)
	if err != nil || entry == nil {
		log.Fatalf("failed to read final stock: %v", err)
	}

	want, _ := engine.NewConverter(nil, 0).Convert(float64(success)*10, "ml", entry.Quantity.Unit)
	fmt.Printf("Final Stock: %.4f %s (version %d)\n", entry.Quantity.Amount, entry.Quantity.Unit, entry.Version)

	if math.Abs(entry.Quantity.Amount-want) <= 1e-6*want {
		fmt.Println("PASS: no lost updates")
	} else {
		fmt.Printf("FAIL: expected %.4f %s\n", want, entry.Quantity.Unit)
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
