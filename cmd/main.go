package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	appconfig "github.com/fyerfyer/semantic-doc-parser/config"
	"github.com/fyerfyer/semantic-doc-parser/internal/cache"
	"github.com/fyerfyer/semantic-doc-parser/internal/database"
	"github.com/fyerfyer/semantic-doc-parser/internal/embedding"
	"github.com/fyerfyer/semantic-doc-parser/internal/llm"
	"github.com/fyerfyer/semantic-doc-parser/internal/parser"
	"github.com/fyerfyer/semantic-doc-parser/internal/parsers"
	"github.com/fyerfyer/semantic-doc-parser/internal/repository"
	"github.com/fyerfyer/semantic-doc-parser/internal/services"
	"github.com/fyerfyer/semantic-doc-parser/internal/splitter"
	"github.com/fyerfyer/semantic-doc-parser/pkg/storage"
	"github.com/fyerfyer/semantic-doc-parser/pkg/taskqueue"
)

func main() {
	// .env存在时加载，不存在不算错误
	_ = godotenv.Load()

	configFile := flag.String("config", "config.yaml", "path to config file")
	parseFile := flag.String("file", "", "parse a single document synchronously and exit")
	flag.Parse()

	cfg, err := appconfig.Load(*configFile)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := appconfig.SetupLogger(cfg.Log)
	logger.Info("Starting semantic document parser...")

	if err := database.Setup(&database.Config{
		Type:         cfg.Database.Type,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		MaxLifetime:  time.Hour,
	}, logger); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	fileStorage, err := setupStorage(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	docParser, err := setupParser(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize parser: %v", err)
	}

	repo := repository.NewParseRepository()

	serviceOpts := []services.ParseOption{services.WithParseLogger(logger)}

	// 一次性解析模式：直接跑完流水线后退出
	if *parseFile != "" {
		runOnce(logger, fileStorage, repo, docParser, *parseFile, serviceOpts)
		return
	}

	if !cfg.Queue.Enable {
		logger.Fatal("Queue is disabled and no -file given, nothing to do")
	}

	queueCfg := &taskqueue.Config{
		RedisAddr:     cfg.Queue.RedisAddr,
		RedisPassword: cfg.Queue.RedisPassword,
		RedisDB:       cfg.Queue.RedisDB,
		Concurrency:   cfg.Queue.Concurrency,
		RetryLimit:    cfg.Queue.RetryLimit,
		RetryDelay:    time.Duration(cfg.Queue.RetryDelay) * time.Second,
		Queues:        map[string]int{"default": 3},
	}

	queue, err := taskqueue.NewQueue(cfg.Queue.Type, queueCfg)
	if err != nil {
		logger.Fatalf("Failed to initialize task queue: %v", err)
	}
	defer queue.Close()

	serviceOpts = append(serviceOpts, services.WithParseQueue(queue))
	parseService := services.NewParseService(fileStorage, repo, docParser, serviceOpts...)

	redisQueue, ok := queue.(*taskqueue.RedisQueue)
	if !ok {
		logger.Fatalf("Queue type %s does not support workers", cfg.Queue.Type)
	}

	worker := taskqueue.NewRedisWorker(redisQueue, queueCfg)
	handler := services.NewParseTaskHandler(parseService, logger)
	worker.RegisterHandler(taskqueue.TaskDocumentParse, handler)

	if err := worker.Start(); err != nil {
		logger.Fatalf("Failed to start worker: %v", err)
	}
	logger.Info("Parse worker started")

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	worker.Stop()
}

// runOnce 同步解析单个文档并输出结果概要
func runOnce(logger *logrus.Logger, fileStorage storage.Storage,
	repo repository.ParseRepository, docParser *parser.Parser, path string, opts []services.ParseOption) {

	file, err := os.Open(path)
	if err != nil {
		logger.Fatalf("Failed to open document: %v", err)
	}
	defer file.Close()

	parseService := services.NewParseService(fileStorage, repo, docParser, opts...)

	ctx := context.Background()
	record, err := parseService.SubmitDocument(ctx, file, filepath.Base(path))
	if err != nil {
		logger.Fatalf("Failed to parse document: %v", err)
	}

	chunks, err := parseService.GetChunks(ctx, record.ID)
	if err != nil {
		logger.Fatalf("Failed to load chunks: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"record_id": record.ID,
		"chunks":    len(chunks),
		"stats":     string(record.Stats),
	}).Info("Document parsed")

	for _, chunk := range chunks {
		logger.WithFields(logrus.Fields{
			"position": chunk.Position,
			"kind":     chunk.Kind,
		}).Debug(chunk.Text)
	}
}

// setupStorage 根据配置创建存储实现
func setupStorage(cfg *appconfig.Config) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case "minio":
		return storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
		})
	default:
		return storage.NewLocalStorage(storage.LocalConfig{Path: cfg.Storage.Path})
	}
}

// setupParser 组装解析流水线
func setupParser(cfg *appconfig.Config, logger *logrus.Logger) (*parser.Parser, error) {
	embedder, err := embedding.NewClient(cfg.Embed.Provider,
		embedding.WithAPIKey(cfg.Embed.APIKey),
		embedding.WithModel(cfg.Embed.Model),
		embedding.WithBaseURL(cfg.Embed.Endpoint),
		embedding.WithBatchSize(cfg.Embed.BatchSize),
		embedding.WithTimeout(time.Duration(cfg.Embed.Timeout)*time.Second),
	)
	if err != nil {
		return nil, err
	}

	llmClient, err := llm.NewClient(cfg.LLM.Provider,
		llm.WithAPIKey(cfg.LLM.APIKey),
		llm.WithModel(cfg.LLM.Model),
		llm.WithBaseURL(cfg.LLM.Endpoint),
		llm.WithMaxTokens(cfg.LLM.MaxTokens),
		llm.WithTemperature(cfg.LLM.Temperature),
		llm.WithTimeout(time.Duration(cfg.LLM.Timeout)*time.Second),
	)
	if err != nil {
		return nil, err
	}

	nodeSplitter := splitter.NewSemanticSplitter(embedder,
		splitter.WithBreakpointPercentile(cfg.Splitter.BreakpointPercentile),
		splitter.WithBufferSize(cfg.Splitter.BufferSize),
		splitter.WithEmbedBatchSize(cfg.Embed.BatchSize),
		splitter.WithLogger(logger),
	)

	semanticParser := parsers.NewSemanticParser(nodeSplitter,
		parsers.WithMaxWorkers(cfg.Splitter.MaxWorkers),
		parsers.WithSemanticLogger(logger),
	)

	tableOpts := []parsers.TableOption{parsers.WithTableLogger(logger)}
	if cfg.Cache.Enable {
		llmCache, err := cache.NewCache(cache.Config{
			Type:            cfg.Cache.Type,
			RedisAddr:       cfg.Cache.Address,
			RedisPassword:   cfg.Cache.Password,
			RedisDB:         cfg.Cache.DB,
			DefaultTTL:      time.Duration(cfg.Cache.TTL) * time.Second,
			CleanupInterval: 10 * time.Minute,
		})
		if err != nil {
			return nil, err
		}
		tableOpts = append(tableOpts, parsers.WithTableCache(llmCache))
	}

	tableParser := parsers.NewTableParser(llmClient, tableOpts...)

	return parser.NewParser(semanticParser, tableParser,
		parser.WithParserLogger(logger),
	), nil
}
