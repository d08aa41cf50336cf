package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prepwise/prepwise-backend/internal/config"
	"github.com/prepwise/prepwise-backend/internal/database"
	"github.com/prepwise/prepwise-backend/internal/logger"
	"github.com/prepwise/prepwise-backend/internal/model"
	"github.com/prepwise/prepwise-backend/internal/repository"
	"github.com/prepwise/prepwise-backend/internal/service"
)

// importFile is the question bank interchange format: subjects keyed by
// name, each holding its question list.
type importFile map[string][]importQuestion

type importQuestion struct {
	Question    string            `json:"question"`
	Options     map[string]string `json:"options"`
	Answer      string            `json:"answer"`
	Explanation string            `json:"explanation"`
}

func main() {
	var path string
	flag.StringVar(&path, "file", "questions.json", "Path to question bank JSON")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	subjectRepo := repository.NewSubjectRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	poolService := service.NewPoolService(subjectRepo, questionRepo, rdb, cfg, log)

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to read question bank")
	}

	var bank importFile
	if err := json.Unmarshal(raw, &bank); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse question bank")
	}

	fmt.Printf("=== Importing %d Subjects ===\n", len(bank))

	for name, questions := range bank {
		subj, err := subjectRepo.GetByName(ctx, name)
		if err != nil {
			fmt.Printf("Subject %q not found. Creating it...\n", name)
			subj = &model.Subject{Name: name}
			if err := subjectRepo.Create(ctx, subj); err != nil {
				log.Fatal().Err(err).Str("subject", name).Msg("Failed to create subject")
			}
		}

		imported, skipped := 0, 0
		for _, iq := range questions {
			q := &model.Question{
				SubjectID:   subj.ID,
				Text:        iq.Question,
				Options:     iq.Options,
				Answer:      iq.Answer,
				Explanation: iq.Explanation,
			}
			if !q.Valid() {
				skipped++
				log.Warn().
					Str("subject", name).
					Str("answer", q.Answer).
					Msg("Answer key not in option set, skipped")
				continue
			}
			if err := questionRepo.Create(ctx, q); err != nil {
				log.Fatal().Err(err).Str("subject", name).Msg("Failed to create question")
			}
			imported++
		}

		if err := poolService.InvalidateSubjectCache(ctx, subj.ID); err != nil {
			log.Warn().Err(err).Str("subject", name).Msg("Cache invalidation failed")
		}

		fmt.Printf("%s: imported %d, skipped %d\n", name, imported, skipped)
	}

	fmt.Println("Import complete")
}
