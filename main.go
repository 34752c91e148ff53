package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/evergreenbank/panel/config"
	"github.com/evergreenbank/panel/database"
	"github.com/evergreenbank/panel/logger"
	"github.com/evergreenbank/panel/web"
	"github.com/evergreenbank/panel/web/service"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}
	defer logger.CloseLogger()

	err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()

	var server *web.Server

	server = web.NewServer()
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() {
	fmt.Println("Start migrating database...")
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()
	fmt.Println("Migration done!")
}

func updateSetting(timeout int, bankName string) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	settingService := service.NewSettingService(database.GetDB())

	if timeout > 0 {
		if err := settingService.SetSessionTimeout(timeout); err != nil {
			fmt.Println("set session timeout failed:", err)
		} else {
			fmt.Printf("set session timeout %v success\n", timeout)
		}
	}
	if bankName != "" {
		if err := settingService.SetSetting("bank_name", bankName); err != nil {
			fmt.Println("set bank name failed:", err)
		} else {
			fmt.Println("set bank name success")
		}
	}
}

func showSetting() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	settingService := service.NewSettingService(database.GetDB())
	settings, err := settingService.GetAllSettings()
	if err != nil {
		fmt.Println("get settings failed:", err)
		return
	}
	fmt.Println("current panel settings as follows:")
	for key, value := range settings {
		fmt.Printf("%s: %s\n", key, value)
	}
}

func main() {
	_ = godotenv.Load()

	var rootCmd = &cobra.Command{
		Use: "bankpanel",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and seed default settings",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var timeout int
	var bankName string
	var show bool
	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Show or update panel settings",
		Run: func(cmd *cobra.Command, args []string) {
			if show {
				showSetting()
				return
			}
			updateSetting(timeout, bankName)
		},
	}
	settingCmd.Flags().IntVarP(&timeout, "timeout", "t", 0, "session timeout in minutes")
	settingCmd.Flags().StringVarP(&bankName, "name", "n", "", "institution name")
	settingCmd.Flags().BoolVarP(&show, "show", "s", false, "show current settings")

	rootCmd.AddCommand(runCmd, migrateCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
