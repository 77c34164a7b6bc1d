package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/examsoft/exam_portal/database"
	"github.com/examsoft/exam_portal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const leaderboardSize = 20
const leaderboardTTL = 60 * time.Second

type LeaderboardEntry struct {
	UserID         uuid.UUID `json:"user_id"`
	FullName       string    `json:"full_name"`
	Organisation   *string   `json:"organisation"`
	BestScore      int       `json:"best_score"`
	BestPercentage int       `json:"best_percentage"`
	AttemptsCount  int       `json:"attempts_count"`
}

func leaderboardKey(examID uuid.UUID) string {
	return "leaderboard:" + examID.String()
}

// GetLeaderboard returns the best finalized score per student for an exam,
// served from Redis when available.
func GetLeaderboard(ctx context.Context, examID uuid.UUID) ([]LeaderboardEntry, error) {
	if database.Redis != nil {
		cached, err := database.Redis.Get(ctx, leaderboardKey(examID)).Result()
		if err == nil {
			var entries []LeaderboardEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		} else if err != redis.Nil {
			log.Printf("Leaderboard cache read failed for exam %s: %v", examID, err)
		}
	}

	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", examID).Error; err != nil {
		return nil, err
	}

	var entries []LeaderboardEntry
	err := database.DB.Model(&models.Attempt{}).
		Select("users.id as user_id", "users.full_name", "users.organisation",
			"MAX(attempts.score) as best_score", "COUNT(attempts.id) as attempts_count").
		Joins("JOIN users ON users.id = attempts.user_id").
		Where("attempts.exam_id = ? AND attempts.status IN ? AND attempts.score IS NOT NULL",
			examID, []string{models.AttemptCompleted, models.AttemptExpired}).
		Group("users.id, users.full_name, users.organisation").
		Order("best_score desc").
		Limit(leaderboardSize).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].BestPercentage = Percentage(entries[i].BestScore, exam.TotalMarks)
	}

	if database.Redis != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := database.Redis.Set(ctx, leaderboardKey(examID), payload, leaderboardTTL).Err(); err != nil {
				log.Printf("Leaderboard cache write failed for exam %s: %v", examID, err)
			}
		}
	}

	return entries, nil
}

func InvalidateLeaderboard(examID uuid.UUID) {
	if database.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := database.Redis.Del(ctx, leaderboardKey(examID)).Err(); err != nil {
		log.Printf("Leaderboard cache invalidation failed for exam %s: %v", examID, err)
	}
}
