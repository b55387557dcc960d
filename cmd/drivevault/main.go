// Package main 启动应用程序
package main

import "github.com/yeisme/drivevault/pkg/cmd"

//	@title			DriveVault API
//	@version		1.0
//	@description	DriveVault 是一个云盘存储后端，提供文件与文件夹管理、链接分享、邮箱授权和回收站生命周期等功能。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com.

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
