package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"
)

func main() {
	fmt.Println("Запуск OralVis...")

	clientName := "oralvis"
	if runtime.GOOS == "windows" {
		clientName = "oralvis.exe"
	}

	// тестовые пользователи tech@oralvis.com / dentist@oralvis.com
	seed := exec.Command("go", "run", "./cmd/seed")
	seed.Stdout = os.Stdout
	seed.Stderr = os.Stderr
	if err := seed.Run(); err != nil {
		fmt.Printf("Сидирование пропущено: %v\n", err)
	}

	// запускаем сервер на фоне
	server := exec.Command("go", "run", "./cmd/server")
	server.Stdout = os.Stdout
	server.Stderr = os.Stderr

	if err := server.Start(); err != nil {
		fmt.Printf("Ошибка запуска сервера: %v\n", err)
		return
	}

	time.Sleep(3 * time.Second)
	// собираем клиента
	if _, err := os.Stat(clientName); os.IsNotExist(err) {
		fmt.Println("Сборка клиента...")
		build := exec.Command("go", "build", "-o", clientName, "./cmd/oralvis")
		build.Stdout = os.Stdout
		build.Stderr = os.Stderr
		if err := build.Run(); err != nil {
			fmt.Printf("Ошибка сборки клиента: %v\n", err)
		}
		// если не винда даём права
		if runtime.GOOS != "windows" {
			os.Chmod(clientName, 0755)
		}
	}

	fmt.Println("Сервер запущен на http://127.0.0.1:5000")
	if runtime.GOOS == "windows" {
		fmt.Println("Данный терминал не закрывай. Открой новый и запускай: .\\oralvis.exe login --email tech@oralvis.com")
	} else {
		fmt.Println("Данный терминал не закрывай. Открой новый и запускай: ./oralvis login --email tech@oralvis.com")
	}

	server.Wait()
}
