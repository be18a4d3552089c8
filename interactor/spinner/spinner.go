package spinner

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

var frames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

type Spinner struct {
	wg     *sync.WaitGroup
	cancel context.CancelFunc
}

func (s Spinner) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Spin renders a spinner next to tips on out until Stop is called. With
// withDone the line is kept and the spinner replaced by a done mark;
// otherwise the spinner is erased.
func Spin(ctx context.Context, tips string, out *os.File, withDone bool) (spinner Spinner) {
	tips, hadNewline := strings.CutSuffix(tips, "\n")
	ctx, spinner.cancel = context.WithCancel(ctx)
	spinner.wg = &sync.WaitGroup{}
	spinner.wg.Add(1)
	go func() {
		defer spinner.wg.Done()
		line := fmt.Sprintf("%s %s", string(frames[0]), tips)
		fmt.Fprint(out, line)
		for i := 1; ; i++ {
			select {
			case <-ctx.Done():
				erase(out, line)
				if withDone {
					fmt.Fprintf(out, "\033[32m●\033[0m %s", tips)
				} else {
					fmt.Fprintf(out, "%s  \b\b", tips)
				}
				if hadNewline {
					fmt.Fprint(out, "\n")
				}
				return
			default:
				time.Sleep(100 * time.Millisecond)
				erase(out, line)
				line = fmt.Sprintf("%s %s", string(frames[i%len(frames)]), tips)
				fmt.Fprint(out, line)
			}
		}
	}()
	return
}

func erase(out *os.File, line string) {
	for range displayWidth(line) {
		fmt.Fprint(out, "\b")
	}
}

func displayWidth(s string) int {
	width := 0
	for _, r := range s {
		width += runewidth.RuneWidth(r)
	}
	return width
}
