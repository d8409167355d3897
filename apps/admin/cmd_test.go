package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/planacad/backend/core/teacher"
	dummydb "github.com/planacad/backend/storage/database/dummy"
)

var repo teacher.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo = dummydb.NewTeacherRepository(db)

	return &commandLine{repo: repo}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_addTeacher(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"addteacher"}, wantErr: errHelp},
		{name: "missing email", args: []string{"addteacher", "-name", "Marta"}, wantErr: errHelp},
		{name: "bad role", args: []string{"addteacher", "-name", "Marta", "-email", "m@colegio.edu", "-role", "lol"}, wantErr: errHelp},
		{name: "create docente", args: []string{"addteacher", "-name", "Marta", "-email", "m@colegio.edu", "-password", "Secret123"}},
		{name: "promote to rector", args: []string{"addteacher", "-name", "Marta R", "-email", "m@colegio.edu", "-role", teacher.RoleRector}},
		{name: "generated password", args: []string{"addteacher", "-name", "Pablo", "-email", "p@colegio.edu"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil && err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	// promote reused the existing row instead of creating a new one
	tchr, err := repo.GetTeacherByEmail(context.Background(), "m@colegio.edu")
	if err != nil {
		t.Fatalf("GetTeacherByEmail() failed: %v", err)
	}
	if tchr.Role != teacher.RoleRector {
		t.Errorf("role = %s, want %s", tchr.Role, teacher.RoleRector)
	}
	if tchr.Name != "Marta R" {
		t.Errorf("name = %s, want Marta R", tchr.Name)
	}
	if err := tchr.CheckPassword("Secret123"); err == nil {
		t.Error("password should have been replaced on promote")
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	if err := cli.addTeacher("Pablo Docente", "docente@colegio.edu", teacher.RoleDocente, "Secret123"); err != nil {
		t.Fatalf("addTeacher() failed: %v", err)
	}
	tchr, err := repo.GetTeacherByEmail(context.Background(), "docente@colegio.edu")
	if err != nil {
		t.Fatalf("GetTeacherByEmail() failed: %v", err)
	}

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "docente@colegio.edu"}, wantErr: errHelp},
		{name: "teacher not found", args: []string{"resetpassword", "-email", "nadie@colegio.edu"}, extra: extra{pwd: "lol"}, wantErr: teacher.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", "docente@colegio.edu"}, extra: extra{pwd: "NuevoSecreto1"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshed, err := repo.GetTeacherByEmail(context.Background(), tchr.Email)
				if err != nil {
					t.Fatalf("GetTeacherByEmail() failed: %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, tchr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
