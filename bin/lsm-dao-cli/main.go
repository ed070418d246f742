package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	lsm_dao "github.com/Zhanghailin1995/lsm-dao"
	"github.com/Zhanghailin1995/lsm-dao/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	dbPath := flag.String("path", "lsm.db", "lsm db path")
	layout := flag.String("layout", "segments", "storage layout: segments or snapshot")
	retainTombstones := flag.Bool("retain_tombstones", true, "keep deletions in the memtable until flushed")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	options := lsm_dao.DefaultOptions()
	options.RetainTombstones = *retainTombstones
	switch *layout {
	case "segments":
		options.Layout = lsm_dao.LayoutSegments
	case "snapshot":
		options.Layout = lsm_dao.LayoutSnapshot
	default:
		logrus.Fatalf("invalid layout %q", *layout)
	}

	dao := utils.Unwrap(lsm_dao.Open(*dbPath, options))

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "put":
			if len(fields) != 3 {
				fmt.Println("usage: put <key> <value>")
				continue
			}
			utils.UnwrapError(dao.Put([]byte(fields[1]), []byte(fields[2])))
		case "fill":
			if len(fields) != 3 {
				fmt.Println("usage: fill <begin> <end>")
				continue
			}
			begin := utils.Unwrap(strconv.Atoi(fields[1]))
			end := utils.Unwrap(strconv.Atoi(fields[2]))
			for i := begin; i <= end; i++ {
				utils.UnwrapError(dao.Put([]byte(strconv.Itoa(i)), []byte(fmt.Sprintf("value%d", i))))
			}
			fmt.Printf("%d values filled\n", end-begin+1)
		case "del":
			if len(fields) != 2 {
				fmt.Println("usage: del <key>")
				continue
			}
			utils.UnwrapError(dao.Delete([]byte(fields[1])))
		case "get":
			if len(fields) != 2 {
				fmt.Println("usage: get <key>")
				continue
			}
			value, found, err := dao.Get([]byte(fields[1]))
			utils.UnwrapError(err)
			if !found {
				fmt.Printf("%s not found\n", fields[1])
			} else {
				fmt.Printf("%s=%s\n", fields[1], value)
			}
		case "scan":
			var from, to []byte
			if len(fields) > 1 {
				from = []byte(fields[1])
			}
			if len(fields) > 2 {
				to = []byte(fields[2])
			}
			iter, err := dao.Range(from, to)
			if err != nil {
				fmt.Printf("scan error: %v\n", err)
				continue
			}
			cnt := 0
			for iter.IsValid() {
				cnt++
				fmt.Printf("%s=%s\n", iter.Key(), iter.Record().Value())
				utils.UnwrapError(iter.Next())
			}
			fmt.Printf("%d keys scanned\n", cnt)
		case "dump":
			dao.DumpStructure(os.Stdout)
		case "quit", "close":
			utils.UnwrapError(dao.Close())
			return
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
	utils.UnwrapError(scanner.Err())
	utils.UnwrapError(dao.Close())
}
