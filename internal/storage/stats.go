package storage

import (
	"database/sql"
	"time"
)

// TotalStats — сводная статистика бота.
type TotalStats struct {
	TotalUsers     int64
	TotalMessages  int64
	TotalDownloads int64
}

// UpdateUserStats увеличивает счетчик сообщений пользователя и обновляет
// время последней активности.
func UpdateUserStats(db *sql.DB, userID int64) error {
	_, err := db.Exec(`
		INSERT INTO user_stats (user_id, messages, last_active, created_at)
		VALUES ($1, 1, $2, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			messages = user_stats.messages + 1,
			last_active = $2
	`, userID, time.Now())
	return err
}

// IncrementTotalUsersIfNew увеличивает общее число пользователей, если
// пользователь встретился впервые.
func IncrementTotalUsersIfNew(db *sql.DB, userID int64) error {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM user_stats WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		_, err := db.Exec(`UPDATE total_stats SET total_users = total_users + 1, updated_at = $1 WHERE id = 1`, time.Now())
		return err
	}
	return nil
}

// IncrementTotalMessages увеличивает счетчик сообщений в общей статистике.
func IncrementTotalMessages(db *sql.DB) error {
	_, err := db.Exec(`UPDATE total_stats SET total_messages = total_messages + 1, updated_at = $1 WHERE id = 1`, time.Now())
	return err
}

// IncrementDownloads увеличивает счетчик скачиваний у пользователя и в
// общей статистике.
func IncrementDownloads(db *sql.DB, userID int64) error {
	_, err := db.Exec(`UPDATE user_stats SET downloads = downloads + 1 WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	_, err = db.Exec(`UPDATE total_stats SET total_downloads = total_downloads + 1, updated_at = $1 WHERE id = 1`, time.Now())
	return err
}

// GetTotalStats возвращает сводную статистику.
func GetTotalStats(db *sql.DB) (*TotalStats, error) {
	var s TotalStats
	err := db.QueryRow(`SELECT total_users, total_messages, total_downloads FROM total_stats WHERE id = 1`).
		Scan(&s.TotalUsers, &s.TotalMessages, &s.TotalDownloads)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
