package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/teacher"
)

// addTeacher updates or creates a teacher.Teacher. When pwd is empty a random
// one is generated and printed once.
func (cli *commandLine) addTeacher(name, email, role, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	var generated bool
	if pwd == "" {
		pwd = uuid.New().String()
		generated = true
	}

	t, err := cli.repo.GetTeacherByEmail(ctx, email)
	if err != nil {
		if err != teacher.ErrNotFound {
			return err
		}
		t = teacher.Teacher{
			Name:      name,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
	}
	t.Name = name
	t.Role = role
	if err := t.SetPassword(pwd); err != nil {
		return err
	}

	active, verified := true, true
	if t.ID == 0 {
		t.IsActive = true
		t.IsVerified = true
		if t, err = cli.repo.CreateTeacher(ctx, t); err != nil {
			return err
		}
	} else if t, err = cli.repo.UpdateTeacher(ctx, t, &active, &verified); err != nil {
		return err
	}

	if generated {
		fmt.Printf("teacher %d (%s) saved; generated password: %s\n", t.ID, t.Email, pwd)
	} else {
		fmt.Printf("teacher %d (%s) saved\n", t.ID, t.Email)
	}
	return nil
}
