package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/qianji-dev/store-scheduler/backend/internal/config"
	"github.com/qianji-dev/store-scheduler/backend/internal/repository"
	"github.com/qianji-dev/store-scheduler/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 为门店员工插入随机可用时间, 3: 为下周插入随机班次, 4: 为过去一周插入随机打卡记录)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	storeID := cfg.Seed.Employee.StoreID

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			employee := utils.GenerateRandomEmployee(storeID, float64(cfg.Scheduling.DefaultWeeklyCap))
			if err := repo.CreateEmployee(employee); err != nil {
				slog.Error("无法插入员工", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入员工成功", slog.Int("count", n-cnt))
	case 2:
		employees, err := repo.GetEmployeesByStore(storeID, true)
		if err != nil {
			slog.Error("无法获取门店员工", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, employee := range employees {
			// 每个员工随机挑 4 到 6 个星期几设置可用时间
			for _, weekday := range rand.Perm(7)[:rand.Intn(3)+4] {
				window := utils.GenerateRandomWindow(employee.ID, int32(weekday))
				if err := repo.UpsertWindow(window); err != nil {
					slog.Error("无法插入可用时间", slog.String("error", err.Error()))
					continue
				}

				cnt++
			}
		}

		slog.Info("插入可用时间成功", slog.Int("count", cnt))
	case 3:
		employees, err := repo.GetEmployeesByStore(storeID, true)
		if err != nil {
			slog.Error("无法获取门店员工", slog.String("error", err.Error()))
			return
		}
		windows, err := repo.GetWindowsByStore(storeID)
		if err != nil {
			slog.Error("无法获取门店可用时间", slog.String("error", err.Error()))
			return
		}

		// 从下周一开始插入一周的班次，只插到各自的可用时间窗内
		monday := time.Now().AddDate(0, 0, 8-int(time.Now().Weekday()))

		cnt := 0
		for _, employee := range employees {
			for day := 0; day < 7; day++ {
				date := monday.AddDate(0, 0, day)

				for _, w := range windows[employee.ID] {
					if int(w.Weekday) != int(date.Weekday()) {
						continue
					}

					shift := utils.GenerateRandomShift(employee.ID, date, w)
					if err := repo.CreateShift(shift); err != nil {
						slog.Error("无法插入班次", slog.String("error", err.Error()))
						break
					}

					cnt++
					break
				}
			}
		}

		slog.Info("插入班次成功", slog.Int("count", cnt))
	case 4:
		employees, err := repo.GetEmployeesByStore(storeID, true)
		if err != nil {
			slog.Error("无法获取门店员工", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, employee := range employees {
			for day := 1; day <= 7; day++ {
				// 一部分天不打卡，模拟休息日
				if rand.Intn(3) == 0 {
					continue
				}

				entry := utils.GenerateRandomTimeEntry(employee.ID, time.Now().AddDate(0, 0, -day))
				// 只有最近一天允许保留未下班的记录，一人至多一条未关闭记录
				if entry.ClockOut == nil && day != 1 {
					continue
				}
				if err := repo.CreateTimeEntry(entry); err != nil {
					slog.Error("无法插入打卡记录", slog.String("error", err.Error()))
					continue
				}
				if entry.ClockOut != nil {
					if err := repo.CloseTimeEntry(entry, *entry.ClockOut); err != nil {
						slog.Error("无法关闭打卡记录", slog.String("error", err.Error()))
						continue
					}
				}

				cnt++
			}
		}

		slog.Info("插入打卡记录成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
