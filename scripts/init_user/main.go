package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sitepress/internal/config"
	"github.com/sitepress/internal/db"
	"gorm.io/gorm"
)

// 创建或重置后台用户的密码。
func main() {
	var username, password string
	var superuser bool
	flag.StringVar(&username, "username", "admin", "login name")
	flag.StringVar(&password, "password", "", "password, required")
	flag.BoolVar(&superuser, "superuser", true, "grant superuser")
	flag.Parse()

	if strings.TrimSpace(password) == "" {
		fmt.Fprintln(os.Stderr, "-password is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := db.Init(cfg.DatabaseOptions()); err != nil {
		fmt.Fprintf(os.Stderr, "数据库初始化失败: %v\n", err)
		os.Exit(1)
	}

	hashed, err := db.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "密码加密失败: %v\n", err)
		os.Exit(1)
	}

	var user db.User
	err = db.DB.Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = db.User{Username: strings.TrimSpace(username), Password: hashed, IsSuperuser: superuser}
		err = db.DB.Create(&user).Error
	case err == nil:
		user.Password = hashed
		user.IsSuperuser = superuser
		err = db.DB.Save(&user).Error
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "保存用户失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("用户 %s 已就绪 (superuser=%t)\n", user.Username, user.IsSuperuser)
}
