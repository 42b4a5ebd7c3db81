package paths_test

import (
	"fmt"

	"github.com/marchallab/netview/pkg/paths"
)

func ExampleParse() {
	idx, err := paths.Parse(map[string][]string{
		"expression": {
			"sample1\tsample1\t1.5\tSRC->KRAS<-FRS2",
			"sample2\tsample1\t0.5\tSRC->KRAS",
		},
	})
	if err != nil {
		panic(err)
	}

	fmt.Println(idx.EdgeWeight("SRC;KRAS"))
	for _, p := range idx.ByNode("FRS2") {
		fmt.Println(p)
	}
	// Output:
	// 2
	// [expression] SRC->KRAS<-FRS2 (1.5)
}
