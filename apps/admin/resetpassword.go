package main

import (
	"context"

	"github.com/planacad/backend/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	t, err := cli.repo.GetTeacherByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err := t.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.repo.UpdateTeacher(ctx, t, nil, nil); err != nil {
		return err
	}
	return nil
}
