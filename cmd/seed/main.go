package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/cohesia-portal/config"
	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
	"github.com/oksasatya/cohesia-portal/internal/domain/repository"
	"github.com/oksasatya/cohesia-portal/internal/infrastructure/jsonfile"
	"github.com/oksasatya/cohesia-portal/pkg/helpers"
)

type demoUser struct {
	name, employeeID, phone, password string
	role                              entity.Role
}

var demoUsers = []demoUser{
	{name: "Ann Hartley", employeeID: "HR001", phone: "555-0100", password: "password123", role: entity.RoleHR},
	{name: "Ben Okafor", employeeID: "EMP001", phone: "555-0101", password: "password123", role: entity.RoleEmployee},
	{name: "Cara Lindqvist", employeeID: "EMP002", phone: "555-0102", password: "password123", role: entity.RoleEmployee},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	users := jsonfile.NewUserRepository(cfg.UsersFile, logger)
	ctx := context.Background()

	for _, d := range demoUsers {
		password := d.password
		if cfg.PasswordHashing {
			h, err := helpers.HashPassword(d.password)
			if err != nil {
				log.Fatalf("failed to hash password: %v", err)
			}
			password = h
		}
		err := users.Append(ctx, entity.User{
			Name:        d.name,
			EmployeeID:  d.employeeID,
			PhoneNumber: d.phone,
			Password:    password,
			Role:        d.role,
			CreatedAt:   entity.FormatTimestamp(time.Now()),
		})
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			fmt.Printf("skipped %s: already present\n", d.employeeID)
		case err != nil:
			log.Fatalf("failed to seed %s: %v", d.employeeID, err)
		default:
			fmt.Printf("seeded user: employeeId=%s role=%s password=%s\n", d.employeeID, d.role, d.password)
		}
	}
	fmt.Printf("users file: %s\n", users.Path())
}
