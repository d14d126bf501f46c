package ecs150fs

import "fmt"

func ExampleFS_roundtrip() {
	dev := buildImage(32000 / BlockSize)
	var fsys FS
	if err := fsys.MountDevice(dev); err != nil {
		fmt.Println("mount failed:", err)
		return
	}
	defer fsys.Unmount()

	const filename, data = "test.txt", "abc123"
	if err := fsys.Create(filename); err != nil {
		fmt.Println("create failed:", err)
		return
	}
	fp, err := fsys.Open(filename)
	if err != nil {
		fmt.Println("open for write failed:", err)
		return
	}
	n, err := fp.Write([]byte(data))
	if err != nil {
		fmt.Println("write failed:", err)
		return
	}
	if n != len(data) {
		fmt.Println("write failed: short write")
		return
	}
	if err := fp.Close(); err != nil {
		fmt.Println("close failed:", err)
		return
	}

	fp, err = fsys.Open(filename)
	if err != nil {
		fmt.Println("open for read failed:", err)
		return
	}
	buf := make([]byte, len(data))
	n, err = fp.Read(buf)
	if err != nil {
		fmt.Println("read failed:", err)
		return
	}
	if got := string(buf[:n]); got != data {
		fmt.Printf("read failed: got %q want %q\n", got, data)
		return
	}
	if err := fp.Close(); err != nil {
		fmt.Println("close failed:", err)
		return
	}
	fmt.Println("wrote and read back file OK!")
	// Output: wrote and read back file OK!
}
