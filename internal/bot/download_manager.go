package bot

import (
	"log"
	"sort"
	"time"
)

// NewDownloadManager создает менеджер с ограниченным числом слотов.
func NewDownloadManager(maxWorkers int) *DownloadManager {
	return &DownloadManager{
		limiter:         make(chan struct{}, maxWorkers),
		activeDownloads: make(map[string]*DownloadInfo),
	}
}

// AcquireSlot пытается занять слот для скачивания. Свободных слотов нет —
// запрос отклоняется сразу, очереди не существует.
func (dm *DownloadManager) AcquireSlot() bool {
	select {
	case dm.limiter <- struct{}{}:
		return true
	default:
		return false
	}
}

// ReleaseSlot освобождает слот для скачивания.
func (dm *DownloadManager) ReleaseSlot() {
	select {
	case <-dm.limiter:
	default:
	}
}

// StartDownload регистрирует начало скачивания.
func (dm *DownloadManager) StartDownload(requestID, url string, userID int64) *DownloadInfo {
	dm.downloadMutex.Lock()
	defer dm.downloadMutex.Unlock()

	info := &DownloadInfo{
		RequestID: requestID,
		UserID:    userID,
		URL:       url,
		StartTime: time.Now(),
	}
	dm.activeDownloads[requestID] = info
	log.Printf("[DOWNLOAD] [%s] Зарегистрировано активное скачивание для URL: %s", requestID, url)
	return info
}

// FinishDownload регистрирует завершение скачивания.
func (dm *DownloadManager) FinishDownload(requestID string, err error) {
	dm.downloadMutex.Lock()
	defer dm.downloadMutex.Unlock()

	if _, exists := dm.activeDownloads[requestID]; exists {
		delete(dm.activeDownloads, requestID)
		log.Printf("[DOWNLOAD] [%s] Завершено скачивание (ошибка: %v)", requestID, err)
	}
}

// ActiveDownloads возвращает снимок активных скачиваний, старые первыми.
func (dm *DownloadManager) ActiveDownloads() []*DownloadInfo {
	dm.downloadMutex.RLock()
	defer dm.downloadMutex.RUnlock()

	result := make([]*DownloadInfo, 0, len(dm.activeDownloads))
	for _, info := range dm.activeDownloads {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result
}
