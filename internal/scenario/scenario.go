package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/utils"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

type Soldier struct {
	ID                int64  `yaml:"id" toml:"id"`
	FirstName         string `yaml:"firstName" toml:"firstName"`
	LastName          string `yaml:"lastName" toml:"lastName"`
	Rank              string `yaml:"rank" toml:"rank"`
	DaysSinceLastDuty int    `yaml:"daysSinceLastDuty" toml:"daysSinceLastDuty"`
	Inactive          bool   `yaml:"inactive,omitempty" toml:"inactive,omitempty"`
}

type Exception struct {
	Soldier int64       `yaml:"soldier" toml:"soldier"`
	Date    domain.Date `yaml:"date" toml:"date"`
	Code    string      `yaml:"code" toml:"code"`
}

type Appointment struct {
	Soldier int64       `yaml:"soldier" toml:"soldier"`
	Start   domain.Date `yaml:"start" toml:"start"`
	End     domain.Date `yaml:"end" toml:"end"`
	Code    string      `yaml:"code,omitempty" toml:"code,omitempty"`
	Reason  string      `yaml:"reason,omitempty" toml:"reason,omitempty"`
}

type Holiday struct {
	Date domain.Date `yaml:"date" toml:"date"`
	Name string      `yaml:"name" toml:"name"`
}

// Roster 中 Soldiers 为空时表示文件中的全部士兵
type Roster struct {
	Name       string              `yaml:"name" toml:"name"`
	Config     domain.RosterConfig `yaml:"config" toml:"config"`
	Soldiers   []int64             `yaml:"soldiers,omitempty" toml:"soldiers,omitempty"`
	Exceptions []Exception         `yaml:"exceptions,omitempty" toml:"exceptions,omitempty"`
}

// Scenario 描述一次离线排班所需的全部数据
// OtherRosters 按冲突检查的顺序排列
type Scenario struct {
	Roster       Roster        `yaml:"roster" toml:"roster"`
	OtherRosters []Roster      `yaml:"otherRosters,omitempty" toml:"otherRosters,omitempty"`
	Soldiers     []Soldier     `yaml:"soldiers" toml:"soldiers"`
	Appointments []Appointment `yaml:"appointments,omitempty" toml:"appointments,omitempty"`
	Holidays     []Holiday     `yaml:"holidays,omitempty" toml:"holidays,omitempty"`
}

// FormatOf 根据文件扩展名判断格式
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("不支持的场景文件格式 %q，只支持 .yaml/.yml/.toml", filepath.Ext(path))
	}
}

func Load(path string) (*Scenario, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse 解析场景文件，未知字段视为错误
func Parse(data []byte, format Format) (*Scenario, error) {
	s := &Scenario{}

	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(s); err != nil {
			return nil, err
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), s)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("未知的字段 %q", undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("不支持的场景文件格式 %q", format)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate 检查文件内部的引用关系，排班配置本身由排班引擎检查
func (s *Scenario) Validate() error {
	if len(s.Soldiers) == 0 {
		return errors.New("场景中没有士兵")
	}

	known := make(map[int64]bool, len(s.Soldiers))
	for i, soldier := range s.Soldiers {
		if soldier.ID <= 0 {
			return fmt.Errorf("soldiers[%d]: ID 必须为正数", i)
		}
		if known[soldier.ID] {
			return fmt.Errorf("soldiers[%d]: 士兵 %d 重复出现", i, soldier.ID)
		}
		if _, ok := domain.ParseRank(soldier.Rank); !ok {
			return fmt.Errorf("soldiers[%d]: 无法识别的军衔 %q", i, soldier.Rank)
		}
		known[soldier.ID] = true
	}

	rosters := append([]Roster{s.Roster}, s.OtherRosters...)
	names := make(map[string]bool, len(rosters))
	for i := range rosters {
		r := &rosters[i]
		if r.Name == "" {
			return fmt.Errorf("第 %d 个排班表没有名称", i+1)
		}
		if names[r.Name] {
			return fmt.Errorf("排班表名称 %q 重复", r.Name)
		}
		names[r.Name] = true

		if err := utils.ValidateSoldierIDs(r.Soldiers); err != nil {
			return fmt.Errorf("排班表 %q: %w", r.Name, err)
		}
		for _, id := range r.Soldiers {
			if !known[id] {
				return fmt.Errorf("排班表 %q: 士兵 %d 不存在", r.Name, id)
			}
		}
	}

	for i, a := range s.Appointments {
		if !known[a.Soldier] {
			return fmt.Errorf("appointments[%d]: 士兵 %d 不存在", i, a.Soldier)
		}
		if err := utils.ValidateAppointment(a.domain()); err != nil {
			return fmt.Errorf("appointments[%d]: %w", i, err)
		}
	}

	return nil
}

func (a Appointment) domain() *domain.Appointment {
	return &domain.Appointment{
		SoldierID:     a.Soldier,
		StartDate:     a.Start,
		EndDate:       a.End,
		ExceptionCode: a.Code,
		Reason:        a.Reason,
	}
}
