package download

import (
	"Bt1QPlayer/model"
	"Bt1QPlayer/store"
)

// LoadRecords 读取已下载歌曲记录表，键为歌曲 ID
func LoadRecords(s store.Store) (map[string]model.DownloadedSong, error) {
	records := make(map[string]model.DownloadedSong)
	if _, err := s.ReadJSON(store.RecordsPath, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveRecord 写入单条下载记录
// 只有下载工作协程调用，读改写不需要额外加锁
func SaveRecord(s store.Store, rec *model.DownloadedSong) error {
	records, err := LoadRecords(s)
	if err != nil {
		records = make(map[string]model.DownloadedSong)
	}
	records[rec.ID] = *rec
	return s.WriteJSON(store.RecordsPath, records)
}

// DeleteRecord 删除单条下载记录
func DeleteRecord(s store.Store, id string) error {
	records, err := LoadRecords(s)
	if err != nil {
		return err
	}
	if _, ok := records[id]; !ok {
		return nil
	}
	delete(records, id)
	return s.WriteJSON(store.RecordsPath, records)
}

// LocalRecord 查找可用的本地下载记录。
// 记录存在但音频文件已被删除时视为不可用。
func LocalRecord(s store.Store, id string) (*model.DownloadedSong, bool) {
	records, err := LoadRecords(s)
	if err != nil {
		return nil, false
	}
	for key, rec := range records {
		if !model.SameID(key, id) {
			continue
		}
		if !s.Exists(store.MusicPath(rec.ID)) {
			return nil, false
		}
		return &rec, true
	}
	return nil, false
}
