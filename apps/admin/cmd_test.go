package main

import (
	"io/ioutil"
	"log"
	"testing"
)

func init() {
	logger = log.New(ioutil.Discard, "", 0)
}

func Test_commandLine_run(t *testing.T) {
	cli := &commandLine{}

	tests := []struct {
		name    string
		args    []string // without program name
		wantErr error
	}{
		{name: "no command", args: []string{}, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "resetpassword: no email", args: []string{"resetpassword"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"admin"}, tt.args...)
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("run() error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}
