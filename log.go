package main

import "os"

var accessLogFile = "access.log"
var errorLogFile = "error.log"

func SetLogFiles(accessLog, errorLog string) {
	if accessLog != "" {
		accessLogFile = accessLog
	}
	if errorLog != "" {
		errorLogFile = errorLog
	}
}

func RequestLog(method, path, remote string) {
	line := method + " " + path + " - " + remote
	AppendLog(accessLogFile, "INFO", line)
}

func ErrorLog(err error) {
	line := "Error: " + err.Error()
	AppendLog(errorLogFile, "ERROR", line)
}

func AppendLog(file, logType, entry string) {
	entry = "[" + logType + "] " + entry
	println(entry)

	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		println("Failed to open log file:", err.Error())
		return
	}
	defer f.Close()

	if _, err := f.WriteString(entry + "\n"); err != nil {
		println("Failed to write to log file:", err.Error())
	}
}
