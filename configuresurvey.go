//go:build linux || darwin || windows || openbsd || netbsd || freebsd
// +build linux darwin windows openbsd netbsd freebsd

package main

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

func GetInput(prompt string, answer string) string {
	err := survey.AskOne(&survey.Input{
		Message: prompt,
		Default: answer,
	}, &answer)
	if err != nil {
		fmt.Println("Failed to retrieve your choice using default: " + answer)
	}
	return answer
}

func GetConfirm(prompt string, answer bool) bool {
	err := survey.AskOne(&survey.Confirm{
		Message: prompt,
		Default: answer,
	}, &answer)
	if err != nil {
		fmt.Printf("Failed to retrieve your choice using default: %v\n", answer)
	}
	return answer
}
