package store

// Store 播放器小型 JSON 文档与本地媒体文件的持久化抽象。
// path 一律使用相对路径（见 layout.go），由具体实现决定落在哪里。
type Store interface {
	// ReadJSON 读取并反序列化，文档不存在时返回 found=false 且不报错
	ReadJSON(path string, v interface{}) (found bool, err error)

	// WriteJSON 序列化并落盘，要求对并发读者表现为原子替换
	WriteJSON(path string, v interface{}) error

	// Exists 判断路径是否存在
	Exists(path string) bool

	// Move 移动，优先原子重命名，跨设备时退化为复制加删除
	Move(src, dst string) error

	// Copy 复制
	Copy(src, dst string) error

	// Delete 删除，路径不存在时也算成功
	Delete(path string) error

	// Abs 返回可交给设备/外部程序使用的绝对定位（文件路径或 URI）
	Abs(path string) string
}
