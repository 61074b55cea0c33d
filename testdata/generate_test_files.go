//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// Генерирует набор C-программ для ручной проверки детектора: с утечкой,
// без утечки, с зависанием и с падением.
func main() {
	baseDir := filepath.Dir(os.Args[0])
	if len(os.Args) > 1 {
		baseDir = os.Args[1]
	}

	fmt.Println("📁 Создание тестовых C-программ...")

	programs := map[string]string{
		"leaky.c": `#include <stdlib.h>
#include <string.h>

int main(void) {
    char *buf = malloc(40);
    strcpy(buf, "this allocation is never freed");
    char *more = malloc(100);
    (void)more;
    return 0;
}
`,
		"clean.c": `#include <stdlib.h>

int main(void) {
    char *buf = malloc(64);
    free(buf);
    return 0;
}
`,
		"hang.c": `#include <unistd.h>

int main(void) {
    for (;;) {
        sleep(1);
    }
    return 0;
}
`,
		"crash.c": `#include <stdlib.h>

int main(void) {
    char *p = NULL;
    *p = 'x';
    return 0;
}
`,
		"uninit.c": `#include <stdio.h>

int main(void) {
    int x;
    if (x > 0) {
        printf("positive\n");
    }
    return 0;
}
`,
	}

	for name, src := range programs {
		path := filepath.Join(baseDir, name)
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			fmt.Printf("❌ Ошибка записи %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("   ✓ %s\n", name)
	}

	fmt.Println("Готово. Скомпилируйте любой файл и проверьте его детектором.")
}
