package main

import (
	"fmt"
	"log"

	"github.com/sitepress/internal/config"
	"github.com/sitepress/internal/db"
)

// 演示数据生成器
func main() {
	// 初始化数据库
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("读取配置失败:", err)
	}
	if err := db.Init(cfg.DatabaseOptions()); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成演示数据...")
	summary, err := seed(db.DB)
	if err != nil {
		log.Fatal("生成演示数据失败:", err)
	}

	fmt.Println("演示数据生成完成！")
	fmt.Println("用户: admin (密码: admin123), editor (密码: editor123)")
	fmt.Printf("分类: %d, 文章: %d, 页面: %d\n", summary.Categories, summary.Posts, summary.Pages)
}
