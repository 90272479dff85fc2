package main

import (
	"Bt1QPlayer/cmd"
)

func main() {
	// Cobra 负责命令分发，失败时由 Execute 统一退出
	cmd.Execute()
}
