package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/repository"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/seed"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var year int
	var rosterID int64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机士兵, 2: 插入某年的联邦节假日, 3: 插入随机排班表, 4: 为排班表插入随机 Appointment)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.IntVar(&year, "year", time.Now().Year(), "插入节假日的年份")
	flag.Int64Var(&rosterID, "roster-id", 0, "随机插入 Appointment 的排班表 ID")
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

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的士兵数量")
		} else {
			cnt := 0
			for i := 0; i < n; i++ {
				if err := repo.CreateSoldier(utils.GenerateRandomSoldier()); err != nil {
					slog.Error("无法插入士兵", slog.String("error", err.Error()))
					continue
				}
				cnt++
			}

			slog.Info("插入士兵成功", slog.Int("count", cnt))
		}
	case 2:
		cnt := seed.SeedHolidays(repo, year)
		slog.Info("插入节假日成功", slog.Int("year", year), slog.Int("count", cnt))
	case 3:
		if n <= 0 {
			slog.Error("请输入合法的排班表数量")
			return
		}

		soldiers, err := repo.GetAllSoldiers()
		if err != nil {
			slog.Error("无法获取所有士兵", slog.String("error", err.Error()))
			return
		}
		if len(soldiers) == 0 {
			slog.Error("数据库中没有士兵，请先插入士兵")
			return
		}
		soldierIDs := make([]int64, 0, len(soldiers))
		for _, s := range soldiers {
			soldierIDs = append(soldierIDs, s.ID)
		}

		start := domain.DateOf(time.Now())
		cnt := 0
		for i := 0; i < n; i++ {
			roster := &domain.Roster{
				Name:       fmt.Sprintf("随机排班表 %s", utils.GenerateRandomID(3, 3)),
				Config:     utils.GenerateRandomRosterConfig(start.AddDays(rand.Intn(14))),
				Exceptions: domain.ExceptionMap{},
				SoldierIDs: utils.GenerateRandomSubset(soldierIDs),
			}
			if err := repo.CreateRoster(roster); err != nil {
				slog.Error("无法插入排班表", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入排班表成功", slog.Int("count", cnt))
	case 4:
		if rosterID <= 0 {
			slog.Error("请输入合法的排班表 ID")
			return
		}

		roster, err := repo.GetRosterByID(rosterID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的排班表不存在", slog.Int64("roster_id", rosterID))
			default:
				slog.Error("无法获取排班表", slog.String("error", err.Error()))
			}
			return
		}

		if len(roster.SoldierIDs) == 0 {
			slog.Error("排班表中没有士兵", slog.Int64("roster_id", rosterID))
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			soldierID := roster.SoldierIDs[rand.Intn(len(roster.SoldierIDs))]
			appointment := utils.GenerateRandomAppointment(soldierID, roster.Config.StartDate, roster.Config.EndDate)
			if err := repo.CreateAppointment(appointment); err != nil {
				slog.Error("无法插入 Appointment", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入 Appointment 成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
